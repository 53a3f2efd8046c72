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
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/stretchr/testify/require"
)

var testVocab = []string{
	"[PAD]", "[UNK]", "[CLS]", "[SEP]", "[MASK]",
	"hello", "world", "un", "##aff", "##able", ",", "!", "新", "闻", "cafe",
}

func newTestTokenizer(t *testing.T) *Tokenizer {
	t.Helper()
	tok, err := New(testVocab, true)
	require.NoError(t, err)
	return tok
}

func TestTokenize(t *testing.T) {
	tok := newTestTokenizer(t)

	require.Equal(t, []string{"hello", ",", "world", "!"}, tok.Tokenize("Hello, WORLD!"))
	require.Equal(t, []string{"un", "##aff", "##able"}, tok.Tokenize("unaffable"))
	require.Equal(t, []string{"新", "闻"}, tok.Tokenize("新闻"))
	require.Equal(t, []string{"cafe"}, tok.Tokenize("Café"))
	require.Equal(t, []string{"[UNK]"}, tok.Tokenize("xyz"))
	require.Equal(t, []string{"[UNK]"}, tok.Tokenize(strings.Repeat("a", 101)))
}

func TestEncode(t *testing.T) {
	tok := newTestTokenizer(t)

	tokenIDs, segmentIDs := tok.Encode("hello world", "", 0)
	require.Equal(t, []int{2, 5, 6, 3}, tokenIDs)
	require.Equal(t, []int{0, 0, 0, 0}, segmentIDs)

	tokenIDs, segmentIDs = tok.Encode("hello", "world", 0)
	require.Equal(t, []int{2, 5, 3, 6, 3}, tokenIDs)
	require.Equal(t, []int{0, 0, 0, 1, 1}, segmentIDs)
}

func TestEncodeTruncates(t *testing.T) {
	tok := newTestTokenizer(t)

	tokenIDs, segmentIDs := tok.Encode("hello world hello world", "", 4)
	require.Equal(t, []int{2, 5, 6, 3}, tokenIDs)
	require.Len(t, segmentIDs, 4)

	tokenIDs, segmentIDs = tok.Encode("hello world", "world world world", 6)
	require.Len(t, tokenIDs, 6)
	require.Equal(t, 3, tokenIDs[len(tokenIDs)-1])
	require.Equal(t, []int{0, 0, 0, 1, 1, 1}, segmentIDs)
}

func TestNewMissingSpecialToken(t *testing.T) {
	_, err := New([]string{"[PAD]", "[UNK]", "[CLS]", "[SEP]"}, true)
	require.Error(t, err)
	require.Equal(t, ErrMissingSpecialToken, errors.GetKind(err))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	vocabPath := filepath.Join(dir, "vocab.txt")
	require.NoError(t, os.WriteFile(vocabPath, []byte(strings.Join(testVocab, "\n")+"\n"), 0644))

	tok, err := Load(context.Background(), vocabPath, true)
	require.NoError(t, err)
	require.Equal(t, len(testVocab), tok.VocabSize())
	require.Equal(t, 4, tok.MaskID)
	require.Equal(t, "world", tok.IDToToken(6))
	require.Equal(t, tok.UnkID, tok.TokenToID("missing"))

	emptyPath := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(emptyPath, []byte("\n"), 0644))
	_, err = Load(context.Background(), emptyPath, true)
	require.Equal(t, ErrEmptyVocab, errors.GetKind(err))
}
