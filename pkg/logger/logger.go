package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
)

// Level 日志级别
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelTags = map[Level]string{
	LevelDebug: "[DEBUG]",
	LevelInfo:  "[INFO]",
	LevelWarn:  "[WARN]",
	LevelError: "[ERROR]",
	LevelFatal: "[FATAL]",
}

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlue),
	LevelInfo:  color.New(color.FgHiCyan),
	LevelWarn:  color.New(color.FgHiYellow),
	LevelError: color.New(color.FgHiRed),
	LevelFatal: color.New(color.FgHiRed, color.Bold),
}

type rule struct {
	pattern string
	color   *color.Color
}

// 高亮关键词
var highlightRules = []rule{
	{`(?i)(error|panic|timed out)`, color.New(color.FgHiRed)},
	{`(?i)(failed|fail|rejected)`, color.New(color.FgRed)},

	// HTTP方法与状态码
	{`\b(GET|POST|PUT|DELETE|PATCH)\b`, color.New(color.FgBlue)},
	{`\b([45]\d{2})\b`, color.New(color.FgHiRed)},
	{`\b(2\d{2})\b`, color.New(color.FgHiGreen)},

	// URL与耗时
	{`https?://[^\s]+`, color.New(color.FgBlue)},
	{`\b\d+(?:\.\d+)?(?:ms|µs|s)\b`, color.New(color.FgCyan)},

	// UUID
	{`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`, color.New(color.FgHiBlue)},

	// 键值
	{`([a-zA-Z_][a-zA-Z0-9_]*=)`, color.New(color.FgHiCyan)},

	{`(?i)\b(reconciled|registered|established|connected|started)\b`, color.New(color.FgHiGreen)},
	{`\[(.*?)\]`, color.New(color.FgBlue)},
}

var (
	combinedRegex *regexp.Regexp
	colorMap      []*color.Color

	threshold atomic.Int32

	outMu sync.Mutex
	out   io.Writer = os.Stdout
)

var builderPool = sync.Pool{
	New: func() interface{} {
		return new(strings.Builder)
	},
}

// colorWriter 标准库 logger 的输出目标
type colorWriter struct{}

func (cw *colorWriter) Write(p []byte) (int, error) {
	return writeWithColor(p)
}

// writeWithColor 生成前缀（时间、文件、行号、级别）并高亮消息
func writeWithColor(bytes []byte) (int, error) {
	_, file, line, ok := runtime.Caller(6)
	if !ok {
		file = "???"
		line = 0
	}
	file = filepath.Base(file)
	now := time.Now().Format("2006/01/02 15:04:05.000")

	sb := builderPool.Get().(*strings.Builder)
	defer builderPool.Put(sb)
	sb.Reset()

	msg := string(bytes)
	level := LevelInfo
	levelTag := ""
	for lv, tag := range levelTags {
		if strings.HasPrefix(msg, tag) {
			level, levelTag = lv, tag
			msg = strings.TrimPrefix(msg, tag)
			break
		}
	}
	msg = strings.TrimSpace(msg)

	sb.WriteString(color.New(color.FgHiBlue).Sprintf("%s %s:%d", now, file, line))
	sb.WriteByte(' ')
	if levelTag != "" {
		sb.WriteString(levelColors[level].Sprint(levelTag))
		sb.WriteByte(' ')
	}
	sb.WriteString(highlightMessage(msg))
	sb.WriteByte('\n')

	outMu.Lock()
	defer outMu.Unlock()
	_, _ = io.WriteString(out, sb.String())
	return len(bytes), nil
}

// highlightMessage 用合并后的正则一次性找出所有命中区间再着色
func highlightMessage(msg string) string {
	matches := combinedRegex.FindAllStringSubmatchIndex(msg, -1)
	if len(matches) == 0 {
		return msg
	}

	type interval struct {
		start int
		end   int
		color *color.Color
	}
	var intervals []interval

	for _, m := range matches {
		// m[0:2] 为整条匹配，m[2:4] 为外层分组，规则分组从 m[4] 开始
		for i := 0; i < len(colorMap); i++ {
			idx := 4 + 2*i
			if idx+1 >= len(m) {
				break
			}
			start, end := m[idx], m[idx+1]
			if start >= 0 && end >= 0 && end <= len(msg) {
				intervals = append(intervals, interval{start: start, end: end, color: colorMap[i]})
				break
			}
		}
	}
	if len(intervals) == 0 {
		return msg
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	var result strings.Builder
	result.Grow(len(msg))
	cur := 0
	for _, iv := range intervals {
		if iv.start < cur {
			continue
		}
		if iv.start > cur {
			result.WriteString(msg[cur:iv.start])
		}
		result.WriteString(iv.color.Sprint(msg[iv.start:iv.end]))
		cur = iv.end
	}
	if cur < len(msg) {
		result.WriteString(msg[cur:])
	}
	return result.String()
}

func init() {
	var sb strings.Builder
	colorMap = make([]*color.Color, 0, len(highlightRules))

	sb.WriteByte('(')
	for i, r := range highlightRules {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString("(")
		sb.WriteString(r.pattern)
		sb.WriteString(")")
		colorMap = append(colorMap, r.color)
	}
	sb.WriteByte(')')
	combinedRegex = regexp.MustCompile(sb.String())

	threshold.Store(int32(LevelDebug))
	log.SetOutput(&colorWriter{})
	log.SetFlags(0)
}

// SetLevel 设置最低输出级别
func SetLevel(level Level) {
	threshold.Store(int32(level))
}

// ParseLevel 解析级别名称，未知名称返回 LevelInfo
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetOutput 替换日志输出目标（测试或CLI静默时使用）
func SetOutput(w io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	out = w
}

func logf(level Level, format string, v ...interface{}) {
	if int32(level) < threshold.Load() {
		return
	}
	log.Printf(levelTags[level]+" "+format, v...)
}

func Debug(format string, v ...interface{}) {
	logf(LevelDebug, format, v...)
}

func Info(format string, v ...interface{}) {
	logf(LevelInfo, format, v...)
}

func Warn(format string, v ...interface{}) {
	logf(LevelWarn, format, v...)
}

func Error(format string, v ...interface{}) {
	logf(LevelError, format, v...)
}

func Fatal(format string, v ...interface{}) {
	logf(LevelFatal, format, v...)
	os.Exit(1)
}
