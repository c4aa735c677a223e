package main

import (
	"fmt"
	"strings"

	"github.com/oyc-lang/oyc/backend"
	"github.com/oyc-lang/oyc/feedback"
	"github.com/oyc-lang/oyc/frontend"
	"github.com/oyc-lang/oyc/source"
	"github.com/peterh/liner"
)

const replHistoryFile = ".oyc_history"

// runREPL starts an interactive prompt. Each submitted line is appended to
// the input accumulated so far and that whole text is parsed and resolved;
// a line with errors is reported and dropped, otherwise it joins the buffer
// and the whole buffer is recompiled and re-run in a fresh VM, since no
// interpreter state is kept between lines
func runREPL(noColor bool) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	host := &fsHost{noColor: noColor}
	var buffer strings.Builder

	fmt.Println("oyc repl - press Ctrl-D to exit")

	for {
		input, err := line.Prompt("oyc> ")
		if err != nil {
			break
		}
		line.AppendHistory(input)

		trial := buffer.String() + input + "\n"

		file := &source.File{
			Filename: "<repl>",
			Contents: trial,
			Lines:    strings.Split(trial, "\n"),
		}

		ast, msgs := frontend.Parse(file)
		msgs = append(msgs, frontend.Resolve(file, ast)...)

		hadError := false
		for _, msg := range msgs {
			if _, ok := msg.(feedback.Error); ok {
				hadError = true
			}
		}

		if hadError {
			for _, msg := range msgs {
				fmt.Println(msg.Make(!noColor))
			}
			continue
		}

		buffer.WriteString(input)
		buffer.WriteString("\n")

		mainFunc := backend.Compile(ast)
		if _, err := backend.Execute(mainFunc, nil, host, "."); err != nil {
			fmt.Println(err.Error())
		}
	}

	return nil
}
