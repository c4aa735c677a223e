package backend

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oyc-lang/oyc/frontend"
	"github.com/oyc-lang/oyc/source"
)

// requireScript resolves `path` against the directory of whichever script
// is currently executing, asks the Host to load it, and runs it as its own
// top-level function with `args` as its argv. A require chain has no
// cache: requiring the same path twice parses and runs it twice, since the
// language has no module-level state to share between callers
func (inter *Interpreter) requireScript(path string, args []Value) (Value, error) {
	callerDir := inter.scriptDir[len(inter.scriptDir)-1]
	resolved := path
	if !filepath.IsAbs(path) {
		resolved = filepath.Join(callerDir, path)
	}

	contents, err := inter.host.Load(resolved)
	if err != nil {
		return nil, fmt.Errorf("cannot require %q: %s", path, err.Error())
	}

	file := &source.File{
		Filename: resolved,
		Contents: contents,
		Lines:    strings.Split(contents, "\n"),
	}

	prog, msgs := frontend.Parse(file)
	if len(msgs) > 0 {
		return nil, fmt.Errorf("%s", msgs[0].Make(false))
	}

	if msgs := frontend.Resolve(file, prog); len(msgs) > 0 {
		return nil, fmt.Errorf("%s", msgs[0].Make(false))
	}

	proto := Compile(prog)

	inter.scriptDir = append(inter.scriptDir, file.Dir())
	defer func() {
		inter.scriptDir = inter.scriptDir[:len(inter.scriptDir)-1]
	}()

	savedStack := inter.callStack
	savedIP := inter.ip
	savedFP := inter.fp
	inter.callStack = nil

	frame := inter.pushFrame(&Closure{Prototype: proto})
	frame.Registers[1].Value = &Array{Elements: args}

	inter.ip = 0
	inter.execute()

	result := inter.fp.Registers[0].Value.(Value)

	inter.callStack = savedStack
	inter.ip = savedIP
	inter.fp = savedFP

	return result, nil
}
