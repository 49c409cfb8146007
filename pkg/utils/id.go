package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID 32 位十六进制（去掉连字符的 UUIDv4），与 varchar(32) 主键对齐
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
