package main

// main is required for -buildmode=c-shared; it lives outside the cgo file
// so the package also compiles (and its !cgo tests run) without cgo.
func main() {}
