// Command vibe shuffles YouTube playlists by mood.
package main

import "github.com/tessro/vibe/internal/cli"

func main() {
	cli.Execute()
}
