package route

import (
	"errors"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

var (
	// ErrNotFound はパスに一致するルートが存在しないことを表す。
	ErrNotFound = errors.New("ルートが見つかりません")
	// ErrMalformedPath はパスの形式が不正であることを表す。
	ErrMalformedPath = errors.New("パスの形式が不正です")
)

// segmentKind はルートパターン中のセグメントの種類。
type segmentKind int

const (
	segmentLiteral segmentKind = iota
	segmentParam
	segmentCatchAll
)

// segment はルートパターンを "/" で分割した1要素。
type segment struct {
	kind  segmentKind
	value string
}

// pattern はコンパイル済みのルートパターン。
type pattern struct {
	// raw は登録時のパス文字列。
	raw string
	// segments は分割済みのセグメント列。
	segments []segment
}

// Table はHTTPメソッドに依存しないルート解決テーブル。
// Loadの後は並行して安全にResolveを呼び出せる。
type Table struct {
	mu       sync.RWMutex
	patterns []pattern
}

// NewTable はルート定義からテーブルを生成する。
func NewTable(routes gin.RoutesInfo) *Table {
	t := &Table{}
	t.Load(routes)
	return t
}

// Load はルート定義でテーブルの内容を置き換える。
// 同一パスが複数メソッドで登録されている場合は1つにまとめる。
func (t *Table) Load(routes gin.RoutesInfo) {
	seen := make(map[string]struct{}, len(routes))
	patterns := make([]pattern, 0, len(routes))
	for _, r := range routes {
		if _, ok := seen[r.Path]; ok {
			continue
		}
		seen[r.Path] = struct{}{}
		patterns = append(patterns, compile(r.Path))
	}

	t.mu.Lock()
	t.patterns = patterns
	t.mu.Unlock()
}

// Len は登録されているパターン数を返す。
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.patterns)
}

// Resolve はパスに一致するルートが存在するかを判定する。
// 一致しない場合は ErrNotFound、パスが不正な場合は ErrMalformedPath を返す。
func (t *Table) Resolve(path string) error {
	if err := validatePath(path); err != nil {
		return err
	}

	parts := split(path)

	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, p := range t.patterns {
		if p.match(parts) {
			return nil
		}
	}
	return ErrNotFound
}

// validatePath はパスが解決可能な形式かを検証する。
func validatePath(path string) error {
	if path == "" || path[0] != '/' {
		return ErrMalformedPath
	}
	for i := 0; i < len(path); i++ {
		if path[i] < 0x20 || path[i] == 0x7f {
			return ErrMalformedPath
		}
	}
	return nil
}

// compile はGin形式のルートパス（":id", "*filepath"）をパターンに変換する。
func compile(raw string) pattern {
	parts := split(raw)
	segments := make([]segment, 0, len(parts))
	for _, part := range parts {
		switch {
		case strings.HasPrefix(part, ":"):
			segments = append(segments, segment{kind: segmentParam, value: part[1:]})
		case strings.HasPrefix(part, "*"):
			segments = append(segments, segment{kind: segmentCatchAll, value: part[1:]})
		default:
			segments = append(segments, segment{kind: segmentLiteral, value: part})
		}
	}
	return pattern{raw: raw, segments: segments}
}

// split は先頭の "/" を除いてパスをセグメントに分割する。
// 末尾の "/" は空のセグメントとして残るため、末尾スラッシュの有無が区別される。
func split(path string) []string {
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// match はセグメント列がパターンに一致するかを判定する。
func (p pattern) match(parts []string) bool {
	for i, seg := range p.segments {
		if seg.kind == segmentCatchAll {
			return true
		}
		if i >= len(parts) {
			return false
		}
		switch seg.kind {
		case segmentLiteral:
			if parts[i] != seg.value {
				return false
			}
		case segmentParam:
			if parts[i] == "" {
				return false
			}
		}
	}
	return len(parts) == len(p.segments)
}
