package portal

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/mmcdole/lumen/internal/domain"
	"github.com/tidwall/gjson"
)

// Alternate field names seen in liked-articles payloads, in preference order.
// Several are misspellings the backend has shipped.
var (
	likedIDFields     = []string{"id", "articleId"}
	likedTitleFields  = []string{"title", "tittle", "titel"}
	likedAuthorFields = []string{"authorName", "auhtorName", "authorname", "author_name", "author"}
)

// LikedArticles returns the articles the token's user has liked
func (c *Client) LikedArticles(ctx context.Context, token string) ([]domain.LikedArticle, error) {
	body, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/articles/liked",
		token:  token,
	})
	if err != nil {
		return nil, err
	}
	return normalizeLiked(body)
}

// rawShape is the layout of a liked-articles payload.
type rawShape int

const (
	shapeUnknown rawShape = iota
	shapeArray            // [ {...}, {...} ]
	shapeKeyed            // { "12": {...}, "40": {...} }
)

func classify(r gjson.Result) rawShape {
	switch {
	case r.IsArray():
		return shapeArray
	case r.IsObject():
		return shapeKeyed
	default:
		return shapeUnknown
	}
}

// normalizeLiked is the single coercion boundary for the liked-articles
// payload. Entries that do not yield a finite integral id and a non-empty
// title are dropped; only a payload that is neither an array nor an object
// fails as a whole.
func normalizeLiked(body []byte) ([]domain.LikedArticle, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("malformed liked-articles payload")
	}

	root := gjson.ParseBytes(body)
	var elems []gjson.Result
	switch classify(root) {
	case shapeArray:
		elems = root.Array()
	case shapeKeyed:
		elems = keyedValues(root)
	default:
		return nil, fmt.Errorf("unexpected liked-articles payload type %s", root.Type)
	}

	out := make([]domain.LikedArticle, 0, len(elems))
	for _, el := range elems {
		if a, ok := coerceLiked(el); ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// keyedValues returns object values in property order: integer-like keys
// ascending, then the remaining keys as they appear in the document.
func keyedValues(obj gjson.Result) []gjson.Result {
	type indexed struct {
		n     uint64
		value gjson.Result
	}
	var numeric []indexed
	var named []gjson.Result

	obj.ForEach(func(k, v gjson.Result) bool {
		if n, ok := arrayIndexKey(k.String()); ok {
			numeric = append(numeric, indexed{n: n, value: v})
		} else {
			named = append(named, v)
		}
		return true
	})

	slices.SortStableFunc(numeric, func(a, b indexed) int {
		switch {
		case a.n < b.n:
			return -1
		case a.n > b.n:
			return 1
		}
		return 0
	})

	out := make([]gjson.Result, 0, len(numeric)+len(named))
	for _, e := range numeric {
		out = append(out, e.value)
	}
	return append(out, named...)
}

// arrayIndexKey reports whether k is a canonical non-negative integer.
func arrayIndexKey(k string) (uint64, bool) {
	if k == "" || (len(k) > 1 && k[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(k, 10, 32)
	if err != nil || n == math.MaxUint32 {
		return 0, false
	}
	return n, true
}

func coerceLiked(el gjson.Result) (domain.LikedArticle, bool) {
	if !el.IsObject() {
		return domain.LikedArticle{}, false
	}

	id, ok := firstID(el, likedIDFields)
	if !ok {
		return domain.LikedArticle{}, false
	}

	title := firstText(el, likedTitleFields)
	if title == "" {
		return domain.LikedArticle{}, false
	}

	return domain.LikedArticle{
		ID:         id,
		Title:      title,
		AuthorName: firstText(el, likedAuthorFields),
	}, true
}

// firstID returns the first field that holds a finite integral number,
// either as a JSON number or a numeric string.
func firstID(el gjson.Result, fields []string) (int64, bool) {
	for _, f := range fields {
		v := el.Get(f)
		var n float64
		switch v.Type {
		case gjson.Number:
			n = v.Float()
		case gjson.String:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
			if err != nil {
				continue
			}
			n = parsed
		default:
			continue
		}
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			continue
		}
		return int64(n), true
	}
	return 0, false
}

// firstText returns the first non-blank string or number field, trimmed.
func firstText(el gjson.Result, fields []string) string {
	for _, f := range fields {
		v := el.Get(f)
		if v.Type != gjson.String && v.Type != gjson.Number {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}
