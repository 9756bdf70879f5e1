package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// 随机密码字符集，分组保证生成结果同时满足字母加数字的强度要求
const (
	passwordLetters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	passwordDigits  = "23456789"
	passwordSpecial = "!#$%&*+-?@"
)

// RandomPassword 生成指定长度的随机明文密码
//
// 结果至少包含一个字母、一个数字和一个特殊字符。
// 长度小于 8 时按 8 处理。
func RandomPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	charset := passwordLetters + passwordDigits + passwordSpecial
	password := make([]byte, length)

	// 前三个位置分别保证字母、数字、特殊字符
	groups := []string{passwordLetters, passwordDigits, passwordSpecial}
	for i, group := range groups {
		c, err := randomChar(group)
		if err != nil {
			return "", err
		}
		password[i] = c
	}
	for i := len(groups); i < length; i++ {
		c, err := randomChar(charset)
		if err != nil {
			return "", err
		}
		password[i] = c
	}

	// 洗牌，避免固定的字符分组模式
	for i := len(password) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		j := n.Int64()
		password[i], password[j] = password[j], password[i]
	}

	return string(password), nil
}

func randomChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random char: %w", err)
	}
	return charset[n.Int64()], nil
}

// GenerateToken 生成十六进制随机令牌（用于找回密码链接）
func GenerateToken(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
