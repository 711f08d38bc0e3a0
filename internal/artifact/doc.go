// Package artifact opens binary files as flat, read-only byte spaces.
//
// On unix systems files are memory-mapped with golang.org/x/sys/unix so a
// multi-gigabyte artifact costs no heap and is shared by every scan worker
// without copying. Other platforms read the file into memory.
//
// Resolve turns user input (paths, directories, ** globs) into the list of
// files to scan.
package artifact
