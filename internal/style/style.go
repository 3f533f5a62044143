// Package style 终端输出样式
package style

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/getcharzp/go-drunkguard/intox"
)

var (
	colorPass = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	colorWarn = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorFail = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	colorHigh = lipgloss.AdaptiveColor{Light: "#a37acc", Dark: "#d2a6ff"}
	colorMute = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
)

// 图标
const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✖"
)

var (
	Success = lipgloss.NewStyle().Foreground(colorPass).Bold(true)
	Warning = lipgloss.NewStyle().Foreground(colorWarn).Bold(true)
	Error   = lipgloss.NewStyle().Foreground(colorFail).Bold(true)
	Dim     = lipgloss.NewStyle().Foreground(colorMute)
	Bold    = lipgloss.NewStyle().Bold(true)
)

var colorEnabled = true

// levelColors 每个分类的颜色, 按严重程度递增
var levelColors = [intox.NumClasses]lipgloss.AdaptiveColor{colorPass, colorWarn, colorFail, colorHigh}

// SetColorMode 根据 --color 参数设置是否输出颜色: always, auto, never
func SetColorMode(mode string) error {
	switch mode {
	case "auto":
	case "never":
		_ = os.Setenv("NO_COLOR", "1")
		colorEnabled = false
		Success, Warning, Error, Dim, Bold = plain(), plain(), plain(), plain(), plain()
	case "always":
		_ = os.Unsetenv("NO_COLOR")
		_ = os.Setenv("CLICOLOR_FORCE", "1")
	default:
		return fmt.Errorf("无效的 --color 参数 %q: 只能是 always, auto 或 never", mode)
	}
	return nil
}

func plain() lipgloss.Style { return lipgloss.NewStyle() }

// Level 渲染分类名称
func Level(l intox.Label) string {
	if !l.Valid() || !colorEnabled {
		return l.String()
	}
	return lipgloss.NewStyle().Foreground(levelColors[l]).Bold(true).Render(l.String())
}

// Bar 渲染概率条, width 为满格宽度
//
// # Params:
//
//	p: 概率, 超出 [0, 1] 时截断
//	width: 概率条宽度
func Bar(p float32, width int) string {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	filled := int(p*float32(width) + 0.5)
	return strings.Repeat("█", filled) + Dim.Render(strings.Repeat("░", width-filled))
}

// Probabilities 每个分类一行: 名称 概率条 百分比
func Probabilities(probs map[intox.Label]float32, width int) string {
	var sb strings.Builder
	for _, l := range intox.Labels() {
		p, ok := probs[l]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "  %-10s %s %6.2f%%\n", l.String(), Bar(p, width), p*100)
	}
	return sb.String()
}
