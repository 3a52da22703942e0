package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
)

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)

	var common commonFlags
	common.register(fs)
	port := fs.Int("port", 8080, "Port to serve on")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sitetidy serve [options]

Serve the site export over HTTP so renamed pages can be clicked through.

Options:
`)
		fs.PrintDefaults()
	}

	fs.Parse(args)
	cfg := common.load()

	absDir, err := filepath.Abs(cfg.Root)
	if err != nil {
		log.Fatalf("Failed to resolve directory: %v", err)
	}

	addr := fmt.Sprintf(":%d", *port)
	fmt.Printf("🌐 Serving %s at http://localhost%s\n", absDir, addr)
	fmt.Println("Press Ctrl+C to stop")

	if err := http.ListenAndServe(addr, newServeHandler(absDir)); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// newServeHandler serves dir and logs every request.
func newServeHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s", r.Method, r.URL.Path)
		files.ServeHTTP(w, r)
	})
}
