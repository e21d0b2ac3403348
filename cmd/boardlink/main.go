// boardlink is a small command line front for the boardlink API. It
// keeps a local mirror file, so commands keep working (against the
// mirror) when the server is down.
package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/skip2/go-qrcode"

	"github.com/boardlink-dev/boardlink/client"
	"github.com/boardlink-dev/boardlink/internal/domain"
	"github.com/boardlink-dev/boardlink/internal/logger"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: boardlink [flags] <command> [args]

commands:
  show <board>                      print a board
  text <board> <text>               replace a board's text
  upload <board> <file>             attach a file to a board
  rm-media <board> <index>          delete the media item at index
  rm <board>                        delete a board
  share <board> [slug] [seconds]    create a share link
  resolve <slug>                    resolve a share slug to a board id
  qr <board> <out.png>              write a QR code for the board URL
  new                               print a fresh board id

flags:
`)
	flag.PrintDefaults()
}

func main() {
	var (
		baseURL    = flag.String("api", "http://localhost:8080", "boardlink API base URL")
		mirrorPath = flag.String("mirror", defaultMirrorPath(), "path to the local mirror file")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	store, err := client.OpenLocalStore(*mirrorPath)
	if err != nil {
		fatal(err)
	}
	c := client.New(*baseURL, store)
	ctx := context.Background()

	args := flag.Args()
	switch args[0] {
	case "new":
		fmt.Println(client.NewBoardId())

	case "show":
		requireArgs(args, 2)
		board, err := c.LoadOrCreateBoard(ctx, args[1])
		if err != nil {
			fatal(err)
		}
		printBoard(board)

	case "text":
		requireArgs(args, 3)
		board, err := c.SaveText(ctx, args[1], args[2])
		if err != nil {
			fatal(err)
		}
		printBoard(board)

	case "upload":
		requireArgs(args, 3)
		data, err := os.ReadFile(args[2])
		if err != nil {
			fatal(err)
		}
		name := filepath.Base(args[2])
		mimeType := mime.TypeByExtension(filepath.Ext(name))
		board, err := c.Upload(ctx, args[1], name, mimeType, data)
		if err != nil {
			fatal(err)
		}
		printBoard(board)

	case "rm-media":
		requireArgs(args, 3)
		var index int
		if _, err := fmt.Sscanf(args[2], "%d", &index); err != nil {
			fatal(fmt.Errorf("invalid media index %q", args[2]))
		}
		board, err := c.DeleteMediaAt(ctx, args[1], index)
		if err != nil {
			fatal(err)
		}
		printBoard(board)

	case "rm":
		requireArgs(args, 2)
		if err := c.DeleteBoard(ctx, args[1]); err != nil {
			fatal(err)
		}
		fmt.Println("board deleted")

	case "share":
		requireArgs(args, 2)
		slug := ""
		var expiry int64
		if len(args) > 2 {
			slug = args[2]
		}
		if len(args) > 3 {
			if _, err := fmt.Sscanf(args[3], "%d", &expiry); err != nil {
				fatal(fmt.Errorf("invalid expiry %q", args[3]))
			}
		}
		url, err := c.CreateShareLink(ctx, args[1], slug, expiry)
		if err != nil {
			fatal(err)
		}
		fmt.Println(url)

	case "resolve":
		requireArgs(args, 2)
		boardId, err := c.ResolveShare(ctx, args[1])
		if err != nil {
			fatal(err)
		}
		fmt.Println(boardId)

	case "qr":
		requireArgs(args, 3)
		if err := qrcode.WriteFile(c.BoardURL(args[1]), qrcode.Medium, 256, args[2]); err != nil {
			fatal(err)
		}
		fmt.Println("wrote", args[2])

	default:
		usage()
		os.Exit(2)
	}

	if c.Mode() == client.ModeLocal {
		logger.Log.Warn("result came from the local mirror; the API was unreachable")
	}
}

func defaultMirrorPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".boardlink-mirror.json"
	}
	return filepath.Join(home, ".boardlink", "mirror.json")
}

func requireArgs(args []string, n int) {
	if len(args) < n {
		usage()
		os.Exit(2)
	}
}

func printBoard(b *domain.Board) {
	fmt.Printf("board %s (modified %s)\n", b.Id, b.LastModified.Format("2006-01-02 15:04:05"))
	if b.Text != "" {
		fmt.Println(b.Text)
	}
	for i, m := range b.Media {
		fmt.Printf("  [%d] %s (%s, %d bytes) %s\n", i, m.Name, m.Type, m.Size, m.Url)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "boardlink:", err)
	os.Exit(1)
}
