// drunkguard 命令行: 对人脸照片做醉酒程度识别
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/getcharzp/go-drunkguard/internal/style"
)

// 版本信息, 构建时通过 ldflags 注入
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// errExit 命令已经自行输出错误, 只需要返回非 0 退出码
var errExit = errors.New("exit")

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errExit) {
			fmt.Fprintf(stderr, "drunkguard: %v\n", err)
			var hinted *HintedError
			if errors.As(err, &hinted) {
				fmt.Fprintf(stderr, "  %s\n", hinted.Hint)
			}
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "drunkguard",
		Short:         "人脸照片醉酒程度识别",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().String("config", "", "配置文件路径 (TOML), 默认读取 DRUNKGUARD_CONFIG")
	root.PersistentFlags().String("color", "auto", "颜色输出: always, auto, never")
	root.PersistentFlags().String("log-level", "", "日志级别, 覆盖配置文件")
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		colorMode, _ := cmd.Flags().GetString("color")
		return style.SetColorMode(colorMode)
	}
	root.AddCommand(
		newDetectCmd(stdout, stderr),
		newAnnotateCmd(stdout, stderr),
		newConfigCmd(stdout),
		newVersionCmd(stdout),
	)
	return root
}
