package helper

/**
Simplified OS functions
*/

import (
	"bufio"
	"os"
	"strings"
)

// FolderExists returns true if a folder exists
func FolderExists(folder string) bool {
	_, err := os.Stat(folder)
	if err == nil {
		return true
	}
	return !os.IsNotExist(err)
}

// FileExists returns true if filename exists and is not a directory. Files that cannot be accessed
// are reported as missing
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// CreateDir creates the folder if it does not exist
func CreateDir(name string) {
	if !FolderExists(name) {
		err := os.MkdirAll(name, 0770)
		Check(err)
	}
}

// ReadLine reads a line from stdin without the line break
func ReadLine() string {
	reader := bufio.NewReader(os.Stdin)
	text, _ := reader.ReadString('\n')
	return strings.TrimRight(text, "\r\n")
}

// Check panics if error is not nil
func Check(e error) {
	if e != nil {
		panic(e)
	}
}
