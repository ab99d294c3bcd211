package core

import "time"

// Window 是热门榜单的时间窗口。
type Window string

const (
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

// Windows 返回所有时间窗口（缓存失效时需要逐个清理）。
func Windows() []Window {
	return []Window{WindowDay, WindowWeek, WindowMonth}
}

// ParseWindow 解析时间窗口，空字符串默认为 week。
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case "":
		return WindowWeek, nil
	case WindowDay, WindowWeek, WindowMonth:
		return Window(s), nil
	default:
		return "", InvalidInputf(ModuleEngine, "unknown trending window %q", s)
	}
}

// Start 返回窗口起点：now 减去 1 天 / 7 天 / 1 个自然月。
func (w Window) Start(now time.Time) time.Time {
	switch w {
	case WindowDay:
		return now.AddDate(0, 0, -1)
	case WindowMonth:
		return now.AddDate(0, -1, 0)
	default:
		return now.AddDate(0, 0, -7)
	}
}
