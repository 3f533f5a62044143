package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newConfigCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "输出生效的配置 (默认值 + 配置文件 + 环境变量)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := cfg.Encode()
			if err != nil {
				return fmt.Errorf("编码配置失败: %w", err)
			}
			fmt.Fprint(stdout, out)
			return nil
		},
	}
}
