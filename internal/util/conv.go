package util

import (
	"strconv"
)

// MustParseUint 解析路径参数里的无符号整数ID
func MustParseUint(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
