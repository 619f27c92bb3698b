// Command-line code generation for git-derived version information.

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var (
	// Name of file to output with Go version code
	outputfile = flag.String("o", "", "")

	// Go package of the generated file
	pkgName = flag.String("pkg", "main", "")

	// Display usage if true.
	showHelp = flag.Bool("help", false, "")
)

const helpMessage = `
gen-version calls git to generate Go code with source code version info.

Usage: gen-version -o version_git.go [-pkg main]

      -pkg        =string   Package name of generated file (default: main)
      -h, -help   (flag)    Show help message

`

const code = `// Code generated by gen-version. DO NOT EDIT.

package %s

func init() {
	gitVersion = %q
}
`

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = func() {
		fmt.Print(helpMessage)
	}
	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if len(*outputfile) < 4 {
		fmt.Printf("The %q is required for this program\n", "-o foo.go")
		os.Exit(1)
	}

	if err := os.WriteFile(*outputfile, []byte(generate(*pkgName, describe())), 0644); err != nil {
		fmt.Printf("Error save go code: %v\n", err)
		os.Exit(1)
	}
}

// describe returns the git tag description of the working tree or "notag".
func describe() string {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		fmt.Printf("Unable to find git command; alter PATH?\nError: %v\n", err)
		os.Exit(1)
	}
	out, err := exec.Command(gitPath, "describe", "--abbrev=5", "--tags", "--dirty").Output()
	if err != nil {
		return "notag"
	}
	return strings.TrimSpace(string(out))
}

func generate(pkg, version string) string {
	return fmt.Sprintf(code, pkg, version)
}
