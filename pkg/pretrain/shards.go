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

package pretrain

import (
	"context"
	"strings"

	"github.com/cortexlabs/trainer/pkg/lib/storage"
	"github.com/gobwas/glob"
)

// ExpandShards resolves corpus paths to shard files. A path whose last element holds a
// wildcard is matched against the keys of its containing location; other paths pass through.
func ExpandShards(ctx context.Context, patterns []string) ([]string, error) {
	var shards []string
	seen := map[string]bool{}

	for _, pattern := range patterns {
		dir, key := storage.Split(pattern)
		if !strings.ContainsAny(key, "*?[{") {
			if !seen[pattern] {
				seen[pattern] = true
				shards = append(shards, pattern)
			}
			continue
		}

		matcher, err := glob.Compile(key)
		if err != nil {
			return nil, ErrorInvalidCorpusPattern(pattern, err)
		}

		bucket, err := storage.Open(ctx, dir)
		if err != nil {
			return nil, err
		}
		keys, err := bucket.List(ctx, "")
		bucket.Close()
		if err != nil {
			return nil, err
		}

		for _, k := range keys {
			if strings.Contains(k, "/") || !matcher.Match(k) {
				continue
			}
			path := storage.Join(dir, k)
			if !seen[path] {
				seen[path] = true
				shards = append(shards, path)
			}
		}
	}

	if len(shards) == 0 {
		return nil, ErrorNoCorpusShards(patterns)
	}
	return shards, nil
}
