package util

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"strings"
	"time"
)

// NewCertificateID 生成人类可读、低碰撞概率的证书编号，
// 形如 CERT-MB3K2F9T-1A7QZ3：毫秒时间戳 + 随机后缀，统一大写 base36。
func NewCertificateID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)

	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand 不可用时退化为纳秒时钟
		binary.BigEndian.PutUint32(buf[:], uint32(time.Now().UnixNano()))
	}
	suffix := strconv.FormatUint(uint64(binary.BigEndian.Uint32(buf[:])), 36)

	return "CERT-" + strings.ToUpper(ts) + "-" + strings.ToUpper(suffix)
}
