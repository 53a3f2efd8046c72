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

package corpus

import (
	"context"
	"math/rand"

	"github.com/cortexlabs/trainer/pkg/dataset"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/logging"
	"github.com/cortexlabs/trainer/pkg/lib/parallel"
	"github.com/cortexlabs/trainer/pkg/tokenizer"
	"github.com/cortexlabs/trainer/pkg/types/trainconfig"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
)

type Stats struct {
	Documents    int      `json:"documents"`
	Sentences    int      `json:"sentences"`
	Records      int      `json:"records"`
	MaskedTokens int      `json:"masked_tokens"`
	Shards       []string `json:"shards"`
}

// Build tokenizes the input text files and writes shuffled record shards for the objective
func Build(ctx context.Context, cfg *trainconfig.CorpusConfig) (*Stats, error) {
	logger := logging.GetLogger()

	switch cfg.Objective {
	case userconfig.RoBERTaObjective, userconfig.SpanBERTObjective, userconfig.GPTObjective,
		userconfig.UniLMObjective, userconfig.BERTObjective:
	default:
		return nil, ErrorUnsupportedObjective(cfg.Objective.String())
	}
	if minimum := minSequenceLength(cfg.Objective); cfg.SequenceLength < minimum {
		return nil, ErrorSequenceTooShort(cfg.SequenceLength, minimum)
	}

	tok, err := tokenizer.Load(ctx, cfg.VocabPath, cfg.DoLowerCase)
	if err != nil {
		return nil, err
	}

	perFile := make([][]Document, len(cfg.InputPaths))
	err = parallel.RunN(len(cfg.InputPaths), func(i int) error {
		documents, err := ReadDocuments(ctx, cfg.InputPaths[i], tok)
		if err != nil {
			return err
		}
		perFile[i] = documents
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	var documents []Document
	for _, docs := range perFile {
		for _, doc := range docs {
			documents = append(documents, doc)
			stats.Sentences += len(doc)
		}
	}
	stats.Documents = len(documents)
	if len(documents) == 0 {
		return nil, ErrorNoDocuments(cfg.InputPaths)
	}

	rng := rand.New(rand.NewSource(int64(cfg.Seed)))
	builder := &instanceBuilder{
		objective:      cfg.Objective,
		sequenceLength: cfg.SequenceLength,
		clsID:          tok.CLSID,
		sepID:          tok.SEPID,
		tokenSepID:     cfg.TokenSepID,
		rng:            rng,
		masker: &masker{
			rng:        rng,
			rate:       cfg.MaskRate,
			maxSpan:    cfg.MaxSpanLength,
			spanP:      cfg.SpanP,
			maskID:     tok.MaskID,
			vocabSize:  tok.VocabSize(),
			structural: map[int]bool{tok.PadID: true, tok.CLSID: true, tok.SEPID: true, cfg.TokenSepID: true},
			reserved:   map[int]bool{tok.PadID: true, tok.UnkID: true, tok.CLSID: true, tok.SEPID: true, tok.MaskID: true, cfg.TokenSepID: true},
		},
	}

	var records []*dataset.Record
	for dupe := 0; dupe < cfg.DupeFactor; dupe++ {
		records = append(records, builder.build(documents)...)
	}
	rng.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})

	writer, err := newShardWriter(ctx, cfg.OutputDir, cfg.ShardPrefix, cfg.NumShards)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			writer.abort()
			return nil, errors.WithStack(err)
		}
		if err := writer.write(record); err != nil {
			writer.abort()
			return nil, err
		}
		for _, m := range record.IsMasked {
			stats.MaskedTokens += m
		}
	}
	if err := writer.close(); err != nil {
		return nil, err
	}

	stats.Records = len(records)
	stats.Shards = writer.paths()
	logger.Infow("corpus built",
		"objective", cfg.Objective.String(),
		"documents", stats.Documents,
		"sentences", stats.Sentences,
		"records", stats.Records,
		"masked_tokens", stats.MaskedTokens,
		"shards", len(stats.Shards),
	)
	return stats, nil
}
