package main

import "github.com/danmuck/msgtlv/cmd/tlvctl/cmd"

func main() {
	cmd.Execute()
}
