package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/oyc-lang/oyc/backend"
	"github.com/oyc-lang/oyc/feedback"
	"github.com/oyc-lang/oyc/frontend"
	"github.com/oyc-lang/oyc/source"
	"github.com/urfave/cli"
)

var errorNoColor bool
var debugShowAST bool
var debugShowDisassembly bool
var debugShowAll bool

func readSourceFiles(args []string) (files []*source.File) {
	var filenames []string

	for _, arg := range args {
		if abs, err := filepath.Abs(arg); err == nil {
			if path.Ext(abs) == ".oyc" {
				filenames = append(filenames, abs)
			} else {
				fmt.Printf("could not use '%s' with extension '%s'\n", abs, path.Ext(abs))
			}
		} else {
			fmt.Printf("could not find '%s'\n", arg)
		}
	}

	for _, filename := range filenames {
		buf, err := ioutil.ReadFile(filename)
		if err != nil {
			fmt.Println(err.Error())
			continue
		}

		contents := string(buf)
		lines := strings.Split(contents, "\n")

		files = append(files, &source.File{
			Filename: filename,
			Contents: contents,
			Lines:    lines,
		})
	}

	return files
}

// digestFile runs a single file through the pipeline: parse, resolve scope,
// optionally compile and execute. Errors at any stage abort before the next
func digestFile(file *source.File, argv []string, shouldRun bool) (msgs []feedback.Message) {
	var ast *frontend.ProgramNode
	ast, msgs = frontend.Parse(file)

	msgs = append(msgs, frontend.Resolve(file, ast)...)

	for _, msg := range msgs {
		if _, ok := msg.(feedback.Error); ok {
			return msgs
		}
	}

	if debugShowAll || debugShowAST {
		fmt.Println("#######################")
		fmt.Println("##        AST        ##")
		fmt.Println("#######################")
		fmt.Println()
		fmt.Println(frontend.StringifyAST(ast))
		fmt.Println()
	}

	if !shouldRun {
		return msgs
	}

	mainFunc := backend.Compile(ast)

	if debugShowAll || debugShowDisassembly {
		fmt.Println("#######################")
		fmt.Println("##    Disassembly    ##")
		fmt.Println("#######################")
		fmt.Println()
		fmt.Println(backend.Disassemble(mainFunc))
	}

	args := make([]backend.Value, len(argv))
	for i, a := range argv {
		args[i] = backend.Str(a)
	}

	host := &fsHost{noColor: errorNoColor}
	if _, err := backend.Execute(mainFunc, args, host, file.Dir()); err != nil {
		fmt.Println(err.Error())
	}

	return msgs
}

func main() {
	app := cli.NewApp()
	app.Name = "oyc"
	app.Usage = "a small dynamically typed scripting language"

	noColorFlag := cli.BoolFlag{
		Name:        "no-color",
		Usage:       "hide colors in error and warning messages",
		Destination: &errorNoColor,
	}

	debugAstFlag := cli.BoolFlag{
		Name:        "debug-ast",
		Usage:       "show a basic representation of the abstract-syntax-tree",
		Destination: &debugShowAST,
	}

	debugDisFlag := cli.BoolFlag{
		Name:        "debug-disassembly",
		Usage:       "show the disassembled bytecode emitted by the compiler",
		Destination: &debugShowDisassembly,
	}

	debugAllFlag := cli.BoolFlag{
		Name:        "debug",
		Usage:       "alias for --debug-ast --debug-disassembly",
		Destination: &debugShowAll,
	}

	app.Commands = []cli.Command{
		{
			Name:    "run",
			Aliases: []string{"r"},
			Usage:   "Interpret file(s) and output any results",
			Flags: []cli.Flag{
				noColorFlag,
				debugDisFlag,
				debugAstFlag,
				debugAllFlag,
			},
			Action: func(c *cli.Context) error {
				files := readSourceFiles(c.Args())

				for _, f := range files {
					msgs := digestFile(f, c.Args()[1:], true)

					if len(msgs) > 0 {
						fmt.Printf("# %s\n", f.Filename)
						for _, msg := range msgs {
							fmt.Println(msg.Make(!errorNoColor))
						}
					}
				}

				return nil
			},
		},
		{
			Name:    "check",
			Aliases: []string{"c"},
			Usage:   "Check syntax and scope of file(s) without executing",
			Flags: []cli.Flag{
				noColorFlag,
				debugAstFlag,
			},
			Action: func(c *cli.Context) error {
				files := readSourceFiles(c.Args())

				for _, f := range files {
					msgs := digestFile(f, nil, false)

					if len(msgs) > 0 {
						fmt.Printf("# %s\n", f.Filename)
						for _, msg := range msgs {
							fmt.Println(msg.Make(!errorNoColor))
						}
					}
				}

				return nil
			},
		},
		{
			Name:  "repl",
			Usage: "Start an interactive read-eval-print loop",
			Flags: []cli.Flag{
				noColorFlag,
			},
			Action: func(c *cli.Context) error {
				return runREPL(errorNoColor)
			},
		},
	}

	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}

	app.Run(os.Args)
}
