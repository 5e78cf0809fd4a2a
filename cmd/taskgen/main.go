package main

// ============================================================================
// 職責說明：
// 1. CLI 應用程式入口點
// 2. 執行命令並處理頂層錯誤
// ============================================================================

import (
	"fmt"
	"os"

	"github.com/ChuLiYu/taskgen/internal/cli"
)

func main() {
	rootCmd := cli.BuildCLI()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
