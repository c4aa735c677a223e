package main

import (
	"fmt"
	"io/ioutil"

	"github.com/fatih/color"
)

// fsHost is the default backend.Host: `require` paths resolve against the
// filesystem and trace output goes to stdout
type fsHost struct {
	noColor bool
}

func (h *fsHost) Load(path string) (string, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func (h *fsHost) WriteLine(line string) {
	if h.noColor {
		fmt.Println(line)
		return
	}
	fmt.Println(color.New(color.FgWhite).Sprint(line))
}
