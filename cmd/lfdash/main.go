package main

import "github.com/Santhoshkumar2302/langfuse/internal/cli"

func main() {
	cli.Execute()
}
