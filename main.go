package main

import "github.com/husky-tmr/BIM-Composer-sub001/cmd"

func main() {
	cmd.Execute()
}
