package main

import "studywai-backend/internal/cli"

func main() {
	cli.Execute()
}
