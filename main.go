package main

import "github.com/mselser95/polymarket-backtest/cmd"

func main() {
	cmd.Execute()
}
