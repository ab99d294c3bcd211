// Command shoprec 在命令行上运行推荐引擎：加载配置和商品目录，执行一次推荐并输出 JSON。
//
//	shoprec --fixture catalog.yaml personalized u1 --limit 5
//	shoprec --config shoprec.yaml --redis 127.0.0.1:6379 trending day
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
