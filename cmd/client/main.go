// The client is a thin terminal wrapper around the encrypted stream: it
// pumps server output to stdout and stdin lines to the server, nothing more.
package main

import (
	"bufio"
	"crypto/tls"
	"flag"
	"fmt"
	"io"
	"os"
)

func main() {
	addr := flag.String("addr", "localhost:12345", "server address")
	insecure := flag.Bool("insecure", false, "skip certificate verification (self-signed servers)")
	flag.Parse()

	conn, err := tls.Dial("tcp", *addr, &tls.Config{
		InsecureSkipVerify: *insecure,
		MinVersion:         tls.VersionTLS12,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	// Server output until the connection dies.
	go func() {
		_, _ = io.Copy(os.Stdout, conn)
		fmt.Println("\nDisconnected from server.")
		os.Exit(0)
	}()

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		if _, err := fmt.Fprintln(conn, in.Text()); err != nil {
			fmt.Fprintf(os.Stderr, "send: %v\n", err)
			return
		}
	}
}
