/*
Copyright 2022 Cortex Labs, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tokenizer

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"unicode"

	"github.com/cortexlabs/trainer/pkg/consts"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/storage"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const _maxInputCharsPerWord = 100

// Tokenizer is a BERT WordPiece tokenizer
type Tokenizer struct {
	vocab       map[string]int
	tokens      []string
	doLowerCase bool

	PadID  int
	UnkID  int
	CLSID  int
	SEPID  int
	MaskID int
}

func New(tokens []string, doLowerCase bool) (*Tokenizer, error) {
	t := &Tokenizer{
		vocab:       make(map[string]int, len(tokens)),
		tokens:      tokens,
		doLowerCase: doLowerCase,
	}
	for i, token := range tokens {
		if _, ok := t.vocab[token]; !ok {
			t.vocab[token] = i
		}
	}

	for token, dst := range map[string]*int{
		consts.TokenPad:  &t.PadID,
		consts.TokenUnk:  &t.UnkID,
		consts.TokenCLS:  &t.CLSID,
		consts.TokenSEP:  &t.SEPID,
		consts.TokenMask: &t.MaskID,
	} {
		id, ok := t.vocab[token]
		if !ok {
			return nil, ErrorMissingSpecialToken(token)
		}
		*dst = id
	}

	return t, nil
}

// Load reads a vocabulary file with one token per line (local path or bucket URI)
func Load(ctx context.Context, vocabPath string, doLowerCase bool) (*Tokenizer, error) {
	vocabBytes, err := storage.ReadFile(ctx, vocabPath)
	if err != nil {
		return nil, err
	}

	var tokens []string
	scanner := bufio.NewScanner(bytes.NewReader(vocabBytes))
	for scanner.Scan() {
		token := strings.TrimSpace(scanner.Text())
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, vocabPath)
	}
	if len(tokens) == 0 {
		return nil, ErrorEmptyVocab(vocabPath)
	}

	t, err := New(tokens, doLowerCase)
	if err != nil {
		return nil, errors.Wrap(err, vocabPath)
	}
	return t, nil
}

func (t *Tokenizer) VocabSize() int {
	return len(t.tokens)
}

func (t *Tokenizer) TokenToID(token string) int {
	if id, ok := t.vocab[token]; ok {
		return id
	}
	return t.UnkID
}

func (t *Tokenizer) IDToToken(id int) string {
	if id < 0 || id >= len(t.tokens) {
		return consts.TokenUnk
	}
	return t.tokens[id]
}

func (t *Tokenizer) TokensToIDs(tokens []string) []int {
	ids := make([]int, len(tokens))
	for i, token := range tokens {
		ids[i] = t.TokenToID(token)
	}
	return ids
}

// Tokenize splits text into word pieces, without [CLS] or [SEP]
func (t *Tokenizer) Tokenize(text string) []string {
	var pieces []string
	for _, word := range t.basicTokenize(text) {
		pieces = append(pieces, t.wordPiece(word)...)
	}
	return pieces
}

// Encode returns token ids and segment ids for one or two texts, truncated to maxLen (0 means no limit)
func (t *Tokenizer) Encode(first string, second string, maxLen int) ([]int, []int) {
	firstIDs := append([]int{t.CLSID}, t.TokensToIDs(t.Tokenize(first))...)
	firstIDs = append(firstIDs, t.SEPID)

	var secondIDs []int
	if second != "" {
		secondIDs = append(t.TokensToIDs(t.Tokenize(second)), t.SEPID)
	}

	if maxLen > 0 {
		firstIDs, secondIDs = truncate(maxLen, firstIDs, secondIDs)
	}

	tokenIDs := make([]int, 0, len(firstIDs)+len(secondIDs))
	tokenIDs = append(tokenIDs, firstIDs...)
	tokenIDs = append(tokenIDs, secondIDs...)

	segmentIDs := make([]int, len(tokenIDs))
	for i := len(firstIDs); i < len(segmentIDs); i++ {
		segmentIDs[i] = 1
	}

	return tokenIDs, segmentIDs
}

// truncate drops tokens just before the trailing [SEP] of the longer sequence until both fit
func truncate(maxLen int, first []int, second []int) ([]int, []int) {
	for len(first)+len(second) > maxLen {
		if len(first) >= len(second) && len(first) > 2 {
			first = append(first[:len(first)-2], first[len(first)-1])
		} else if len(second) > 1 {
			second = append(second[:len(second)-2], second[len(second)-1])
		} else {
			break
		}
	}
	return first, second
}

func (t *Tokenizer) basicTokenize(text string) []string {
	text = cleanText(text)
	text = padCJK(text)

	var words []string
	for _, word := range strings.Fields(text) {
		if t.doLowerCase {
			word = stripAccents(strings.ToLower(word))
		}
		words = append(words, splitPunctuation(word)...)
	}
	return words
}

func (t *Tokenizer) wordPiece(word string) []string {
	chars := []rune(word)
	if len(chars) > _maxInputCharsPerWord {
		return []string{consts.TokenUnk}
	}

	var pieces []string
	start := 0
	for start < len(chars) {
		end := len(chars)
		found := ""
		for start < end {
			piece := string(chars[start:end])
			if start > 0 {
				piece = "##" + piece
			}
			if _, ok := t.vocab[piece]; ok {
				found = piece
				break
			}
			end--
		}
		if found == "" {
			return []string{consts.TokenUnk}
		}
		pieces = append(pieces, found)
		start = end
	}
	return pieces
}

func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == 0 || r == unicode.ReplacementChar || isControl(r) {
			continue
		}
		if unicode.IsSpace(r) {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func padCJK(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isCJK(r) {
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func stripAccents(word string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, word)
	if err != nil {
		return word
	}
	return stripped
}

func splitPunctuation(word string) []string {
	var out []string
	var current []rune
	for _, r := range word {
		if isPunctuation(r) {
			if len(current) > 0 {
				out = append(out, string(current))
				current = current[:0]
			}
			out = append(out, string(r))
			continue
		}
		current = append(current, r)
	}
	if len(current) > 0 {
		out = append(out, string(current))
	}
	return out
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.In(r, unicode.Cc, unicode.Cf)
}

func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) || (r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2A6DF) ||
		(r >= 0x2A700 && r <= 0x2B73F) ||
		(r >= 0x2B740 && r <= 0x2B81F) ||
		(r >= 0x2B820 && r <= 0x2CEAF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x2F800 && r <= 0x2FA1F)
}
