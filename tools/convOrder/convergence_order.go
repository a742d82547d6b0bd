package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/notargets/godiffusion/report"
)

var (
	csvFile string
)

func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "file containing entries of a convergence study")
	flag.Parse()
	csvFile = *csvFilePtr
	if len(csvFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", csvFile)
	f, err := os.Open(csvFile)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	studies, err := report.ReadCSV(bufio.NewReader(f))
	if err != nil {
		panic(err)
	}
	for _, cs := range studies {
		cs.Print(os.Stdout)
	}
}
