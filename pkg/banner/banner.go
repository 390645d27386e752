package banner

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"taskflow/pkg/version"

	"github.com/fatih/color"
)

var (
	// 颜色组合
	titleColor   = color.New(color.FgHiCyan, color.Bold)
	versionColor = color.New(color.FgHiGreen)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	defaultColor = color.New(color.FgWhite)
	numberColor  = color.New(color.FgHiYellow)
)

// SystemStatus 启动时展示的系统状态
type SystemStatus struct {
	Addr           string
	RedisStatus    bool
	PostgresStatus bool
	Totals         map[string]int64 // 各集合的记录数
	AdminUsers     []string
}

// Print 打印启动信息
func Print(w io.Writer, status SystemStatus) {
	printLogo(w)
	printFrame(w, status)
}

func printFrame(w io.Writer, status SystemStatus) {
	titleColor.Fprintln(w, "| System Information")
	defaultColor.Fprintln(w, "│")

	// 版本信息
	defaultColor.Fprint(w, "│ Version    : ")
	info := version.GetVersionInfo()
	versionColor.Fprintf(w, "%s", info["version"])
	if hash, ok := info["git_commit"]; ok && len(hash) >= 8 {
		defaultColor.Fprint(w, " (")
		versionColor.Fprintf(w, "%s", hash[:8])
		defaultColor.Fprint(w, ")")
	}
	defaultColor.Fprintf(w, " built at %s\n", info["build_time"])
	defaultColor.Fprint(w, "│ Listening  : ")
	successColor.Fprintln(w, status.Addr)

	// 存储状态
	defaultColor.Fprintln(w, "│")
	defaultColor.Fprintln(w, "│ Storage Status")
	defaultColor.Fprint(w, "│ ⚡ Redis    : ")
	printStatus(w, status.RedisStatus)
	defaultColor.Fprint(w, "│ ⚡ Postgres : ")
	printStatus(w, status.PostgresStatus)

	// 统计信息
	defaultColor.Fprintln(w, "│")
	defaultColor.Fprintln(w, "│ Statistics")
	names := make([]string, 0, len(status.Totals))
	for name := range status.Totals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		defaultColor.Fprintf(w, "│ ⚡ %-11s: ", capitalize(name))
		numberColor.Fprintf(w, "%d\n", status.Totals[name])
	}

	defaultColor.Fprintln(w, "│")
	defaultColor.Fprint(w, "│ Admins     : ")
	if len(status.AdminUsers) > 0 {
		successColor.Fprintln(w, strings.Join(status.AdminUsers, ", "))
	} else {
		warningColor.Fprintln(w, "none configured, /admin routes are closed")
	}
	fmt.Fprintln(w)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func printStatus(w io.Writer, ok bool) {
	if ok {
		successColor.Fprintln(w, "Connected")
	} else {
		warningColor.Fprintln(w, "Disconnected")
	}
}

func printLogo(w io.Writer) {
	logo := `
  _____         _    _____ _
 |_   _|_ _ ___| | _|  ___| | _____      __
   | |/ _' / __| |/ / |_  | |/ _ \ \ /\ / /
   | | (_| \__ \   <|  _| | | (_) \ V  V /
   |_|\__,_|___/_|\_\_|   |_|\___/ \_/\_/
`
	for _, line := range strings.Split(logo, "\n") {
		titleColor.Fprintln(w, line)
	}
}
