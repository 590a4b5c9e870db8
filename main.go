package main

import "github.com/dimasjulianto/app-video-cutter/cmd"

func main() {
	cmd.Execute()
}
