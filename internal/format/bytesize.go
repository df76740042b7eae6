package format

import (
	"fmt"
	"math"
)

// byteUnits 以 1024 为进制的单位表，最大到 PB。
var byteUnits = [...]string{"B", "kB", "MB", "GB", "TB", "PB"}

// ByteSize 将字节数格式化为保留一位小数的可读字符串。
// 非法输入（NaN、±Inf）统一返回 "0.0 B"；负数和零不做特殊处理，
// 直接按原值输出。超出 PB 的输入停在最大单位，不再继续除。
func ByteSize(b float64) string {
	if math.IsNaN(b) || math.IsInf(b, 0) {
		return "0.0 B"
	}

	idx := 0
	for b > 1024 && idx < len(byteUnits)-1 {
		b /= 1024
		idx++
	}

	return fmt.Sprintf("%.1f %s", b, byteUnits[idx])
}
