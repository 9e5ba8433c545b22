// Package optional provides a JSON field wrapper that distinguishes an omitted key
// from an explicit null.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value は JSON フィールドの「未指定」「null」「値あり」の3状態を保持します。
// PATCH リクエストで省略されたフィールドと null で明示的にクリアされたフィールドを区別するために使用します。
type Value[T any] struct {
	set bool
	v   *T
}

// Some は値ありの Value を返します。
func Some[T any](v T) Value[T] {
	return Value[T]{set: true, v: &v}
}

// Null は明示的な null を表す Value を返します。
func Null[T any]() Value[T] {
	return Value[T]{set: true}
}

// IsSet はフィールドがリクエストに含まれていた場合に true を返します（null を含む）。
func (o Value[T]) IsSet() bool {
	return o.set
}

// IsNull はフィールドが明示的に null だった場合に true を返します。
func (o Value[T]) IsNull() bool {
	return o.set && o.v == nil
}

// Ptr は値へのポインタを返します。未指定または null の場合は nil です。
func (o Value[T]) Ptr() *T {
	if o.v == nil {
		return nil
	}
	v := *o.v
	return &v
}

// Or は値があればそれを、なければ fallback を返します。
func (o Value[T]) Or(fallback T) T {
	if o.v == nil {
		return fallback
	}
	return *o.v
}

// UnmarshalJSON はキーが存在する場合にのみ encoding/json から呼ばれるため、
// 呼ばれた時点で set を true にします。
func (o *Value[T]) UnmarshalJSON(b []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.v = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.v = &v
	return nil
}

// MarshalJSON は未指定と null をどちらも null として出力します。
func (o Value[T]) MarshalJSON() ([]byte, error) {
	if o.v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.v)
}
