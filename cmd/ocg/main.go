// Command ocg generates typed JSON-RPC clients from OpenRPC documents.
//
// Usage:
//
//	ocg [flags] <command>
//
// The document is fetched with rpc.discover when --url is an HTTP(S) URL and
// read from disk otherwise.
package main

func main() {
	Execute()
}
