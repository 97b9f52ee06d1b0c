package util

import "strings"

// NormalizeCPF 去掉所有非数字字符
func NormalizeCPF(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidCPF 校验巴西个人税号（CPF）的两位 mod-11 校验位
func IsValidCPF(raw string) bool {
	cpf := NormalizeCPF(raw)
	if len(cpf) != 11 {
		return false
	}

	digits := make([]int, 11)
	allSame := true
	for i := range cpf {
		digits[i] = int(cpf[i] - '0')
		if digits[i] != digits[0] {
			allSame = false
		}
	}
	// 00000000000、11111111111 等能通过校验位但都是无效号码
	if allSame {
		return false
	}

	return cpfCheckDigit(digits[:9]) == digits[9] && cpfCheckDigit(digits[:10]) == digits[10]
}

// 权重从 len+1 递减到 2
func cpfCheckDigit(digits []int) int {
	sum := 0
	weight := len(digits) + 1
	for _, d := range digits {
		sum += d * weight
		weight--
	}
	d := 11 - sum%11
	if d >= 10 {
		return 0
	}
	return d
}

// FormatCPF 仅用于展示：11 位数字格式化为 ###.###.###-##，其它输入原样返回数字部分
func FormatCPF(raw string) string {
	cpf := NormalizeCPF(raw)
	if len(cpf) != 11 {
		return cpf
	}
	return cpf[:3] + "." + cpf[3:6] + "." + cpf[6:9] + "-" + cpf[9:]
}
