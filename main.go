package main

import "github.com/ikenna-e/ai-article-scraper/cmd"

func main() {
	cmd.Execute()
}
