package main

import "github.com/llehouerou/quartz/internal/cli"

func main() {
	cli.Execute()
}
