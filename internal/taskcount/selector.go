// Package taskcount 決定單次產生流程的任務數量
package taskcount

import (
	"math"

	"github.com/ChuLiYu/taskgen/internal/random"
)

const (
	// Min 最少任務數
	Min = 1
	// Max 最多任務數
	Max = 20

	// minDraw 將過小的亂數抬升，確保縮放後至少有一個任務
	minDraw = 0.05
)

// Select 從亂數來源取一次樣本，回傳 [Min, Max] 內的任務數量
//
// N = floor(max(r, 0.05) * 20)，r 為 [0,1) 均勻分布
//
// 注意：來源為半開區間，實際最大值為 19；只有 r 恰為 1.0 時才會得到 Max。
// 公式刻意保留，不要改成 floor(r*20)+1 之類的縮放。
func Select(src random.Source) int {
	r := src.Float64()
	if r < minDraw {
		r = minDraw
	}

	n := int(math.Floor(r * Max))

	// 浮點誤差保護
	if n < Min {
		n = Min
	}
	if n > Max {
		n = Max
	}
	return n
}
