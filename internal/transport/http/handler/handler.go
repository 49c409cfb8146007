// Package handler 各业务模块的 HTTP 动作，按模块实现 MountAPI / MountAdmin
package handler

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"time"
)

// 订单、用户等时间字段统一 RFC3339 UTC
const timeLayout = time.RFC3339

// Message 只带一句提示的返回体
type Message struct {
	Message string `json:"message"`
}

type Empty struct{}

// PageQuery ?page=&size=
type PageQuery struct {
	Page int    `form:"page"`
	Size int    `form:"size"`
	Q    string `form:"q"`
}

// Page 列表返回体
type Page[T any] struct {
	List  []T   `json:"list"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

func newPage[T any](list []T, total int64, q PageQuery) Page[T] {
	if list == nil {
		list = []T{}
	}
	page, size := q.Page, q.Size
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return Page[T]{List: list, Total: total, Page: page, Size: size}
}

var flagType = reflect.TypeOf(Flag(false))

// Flag 兼容 true/false、0/1 与 "0"/"1" 三种写法
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	switch string(b) {
	case "true":
		*f = true
		return nil
	case "false", "null", "":
		*f = false
		return nil
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return &json.UnmarshalTypeError{Value: string(b), Type: flagType}
	}
	*f = n != 0
	return nil
}

// 地址接口对外以 0/1 表示
func flagInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
