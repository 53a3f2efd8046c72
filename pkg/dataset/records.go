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

package dataset

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/json"
	"github.com/cortexlabs/trainer/pkg/lib/storage"
	"github.com/cortexlabs/trainer/pkg/types/userconfig"
)

// Record is one pretraining sequence as stored in a corpus shard
type Record struct {
	TokenIDs   []int `json:"token_ids"`
	SegmentIDs []int `json:"segment_ids,omitempty"`
	TargetIDs  []int `json:"target_ids,omitempty"`
	IsMasked   []int `json:"is_masked,omitempty"`
	NSP        *int  `json:"nsp,omitempty"`
}

const (
	FieldTokenIDs   = "token_ids"
	FieldSegmentIDs = "segment_ids"
	FieldTargetIDs  = "target_ids"
	FieldIsMasked   = "is_masked"
	FieldNSP        = "nsp"
)

// RequiredFields lists the record fields an objective trains on
func RequiredFields(objective userconfig.Objective) []string {
	switch objective {
	case userconfig.RoBERTaObjective, userconfig.SpanBERTObjective:
		return []string{FieldTokenIDs, FieldTargetIDs, FieldIsMasked}
	case userconfig.BERTObjective:
		return []string{FieldTokenIDs, FieldSegmentIDs, FieldTargetIDs, FieldIsMasked, FieldNSP}
	case userconfig.GPTObjective, userconfig.UniLMObjective:
		return []string{FieldTokenIDs}
	}
	return nil
}

func (r *Record) has(field string) bool {
	switch field {
	case FieldTokenIDs:
		return len(r.TokenIDs) > 0
	case FieldSegmentIDs:
		return r.SegmentIDs != nil
	case FieldTargetIDs:
		return r.TargetIDs != nil
	case FieldIsMasked:
		return r.IsMasked != nil
	case FieldNSP:
		return r.NSP != nil
	}
	return false
}

// RecordReaderConfig configures how shards are turned into batches
type RecordReaderConfig struct {
	Paths          []string
	Objective      userconfig.Objective
	BatchSize      int
	SequenceLength int
	// separates the source and target segments of unilm records that carry no segment ids
	TokenSepID int
}

// RecordReader streams records from corpus shards and cycles over them forever
type RecordReader struct {
	config   RecordReaderConfig
	required []string

	shardIdx int
	lineNum  int
	reader   io.ReadCloser
	scanner  *bufio.Scanner

	recordsThisCycle int
}

func NewRecordReader(config RecordReaderConfig) (*RecordReader, error) {
	if len(config.Paths) == 0 {
		return nil, ErrorNoShards()
	}
	return &RecordReader{
		config:   config,
		required: RequiredFields(config.Objective),
		shardIdx: -1,
	}, nil
}

// Next reads BatchSize records, wrapping around to the first shard when the last one ends
func (r *RecordReader) Next(ctx context.Context) (*Batch, error) {
	records := make([]*Record, 0, r.config.BatchSize)
	for len(records) < r.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		record, err := r.nextRecord(ctx)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return r.assemble(records), nil
}

func (r *RecordReader) nextRecord(ctx context.Context) (*Record, error) {
	for {
		if r.scanner == nil {
			if err := r.openNextShard(ctx); err != nil {
				return nil, err
			}
		}

		for r.scanner.Scan() {
			r.lineNum++
			line := strings.TrimSpace(r.scanner.Text())
			if line == "" {
				continue
			}
			record, err := r.parse([]byte(line))
			if err != nil {
				return nil, errors.Wrap(err, r.currentPath(), "line "+strconv.Itoa(r.lineNum))
			}
			r.recordsThisCycle++
			return record, nil
		}
		if err := r.scanner.Err(); err != nil {
			return nil, errors.Wrap(err, r.currentPath())
		}
		r.closeShard()
	}
}

func (r *RecordReader) openNextShard(ctx context.Context) error {
	r.shardIdx++
	if r.shardIdx == len(r.config.Paths) {
		if r.recordsThisCycle == 0 {
			return ErrorNoRecords(r.config.Paths)
		}
		r.shardIdx = 0
		r.recordsThisCycle = 0
	}

	reader, err := storage.OpenFile(ctx, r.currentPath())
	if err != nil {
		return err
	}
	r.reader = reader
	r.scanner = bufio.NewScanner(reader)
	r.scanner.Buffer(make([]byte, 0, 64*1024), _maxLineBytes)
	r.lineNum = 0
	return nil
}

func (r *RecordReader) currentPath() string {
	return r.config.Paths[r.shardIdx]
}

func (r *RecordReader) closeShard() {
	if r.reader != nil {
		r.reader.Close()
	}
	r.reader = nil
	r.scanner = nil
}

func (r *RecordReader) Close() error {
	r.closeShard()
	return nil
}

func (r *RecordReader) parse(line []byte) (*Record, error) {
	var record Record
	if err := json.Unmarshal(line, &record); err != nil {
		return nil, ErrorMalformedRecord(err)
	}
	for _, field := range r.required {
		if !record.has(field) {
			return nil, ErrorMissingRecordField(field)
		}
	}

	n := len(record.TokenIDs)
	for field, length := range map[string]int{
		FieldSegmentIDs: len(record.SegmentIDs),
		FieldTargetIDs:  len(record.TargetIDs),
		FieldIsMasked:   len(record.IsMasked),
	} {
		if record.has(field) && length != n {
			return nil, ErrorRecordLengthMismatch(field, length, n)
		}
	}

	if r.config.Objective == userconfig.UniLMObjective && record.SegmentIDs == nil {
		record.SegmentIDs = segmentsFromSeparator(record.TokenIDs, r.config.TokenSepID)
	}

	if n > r.config.SequenceLength {
		record.truncate(r.config.SequenceLength)
	}
	return &record, nil
}

// segmentsFromSeparator marks every position after the first separator as segment 1
func segmentsFromSeparator(tokenIDs []int, sepID int) []int {
	segmentIDs := make([]int, len(tokenIDs))
	seen := false
	for i, id := range tokenIDs {
		if seen {
			segmentIDs[i] = 1
		}
		if id == sepID {
			seen = true
		}
	}
	return segmentIDs
}

func (r *Record) truncate(length int) {
	r.TokenIDs = r.TokenIDs[:length]
	if r.SegmentIDs != nil {
		r.SegmentIDs = r.SegmentIDs[:length]
	}
	if r.TargetIDs != nil {
		r.TargetIDs = r.TargetIDs[:length]
	}
	if r.IsMasked != nil {
		r.IsMasked = r.IsMasked[:length]
	}
}

func (r *RecordReader) assemble(records []*Record) *Batch {
	length := 0
	for _, record := range records {
		if len(record.TokenIDs) > length {
			length = len(record.TokenIDs)
		}
	}

	tokenIDs := make([][]int, len(records))
	segmentIDs := make([][]int, len(records))
	for i, record := range records {
		tokenIDs[i] = record.TokenIDs
		segmentIDs[i] = record.SegmentIDs
	}
	batch := &Batch{
		TokenIDs:   padTo(tokenIDs, length),
		SegmentIDs: padTo(segmentIDs, length),
	}

	if r.config.Objective.UsesMaskedTargets() {
		targetIDs := make([][]int, len(records))
		isMasked := make([][]float64, len(records))
		for i, record := range records {
			targetIDs[i] = record.TargetIDs
			isMasked[i] = make([]float64, len(record.IsMasked))
			for j, v := range record.IsMasked {
				if v != 0 {
					isMasked[i][j] = 1
				}
			}
		}
		batch.TargetIDs = padTo(targetIDs, length)
		batch.IsMasked = padFloatsTo(isMasked, length)
	}

	if r.config.Objective == userconfig.BERTObjective {
		batch.NSP = make([]int, len(records))
		for i, record := range records {
			batch.NSP[i] = *record.NSP
		}
	}

	return batch
}
