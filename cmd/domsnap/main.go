package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/root4loot/domsnap/pkg/extractor"
	"github.com/root4loot/goutils/log"
)

const (
	author  = "@danielantonsen"
	version = "0.1.0"
	usage   = `USAGE:
  domsnap [options] <url> <outputFile>

  Writes the page's element tree to <outputFile> (JSON) and a full-page
  screenshot next to it (.json replaced by .png).

CONFIGURATIONS:
  -e,   --engine                 browser engine (rod, chromedp)                         (Default: rod)
  -to,  --timeout                navigation timeout (seconds)                            (Default: 60)
  -ua,  --user-agent             specify user agent                                      (Default: browser UA)
  -b,   --bin                    browser binary                                          (Default: auto-detect)

OUTPUT:
  -im,  --imprint                add page origin below the screenshot                    (Default: false)
        --debug                  enable debug mode
        --version                display version
`
)

type cli struct {
	*extractor.Extractor
	TargetURL  string
	OutputFile string
}

func NewCLI() *cli {
	return &cli{Extractor: extractor.NewExtractorWithOptions(extractor.NewOptions())}
}

func init() {
	log.Init("domsnap")
}

func main() {
	cli := NewCLI()
	if err := cli.parseFlags(os.Args[1:]); err != nil {
		log.Error(err)
		fmt.Print(usage)
		os.Exit(1)
	}

	if _, err := cli.Run(cli.TargetURL, cli.OutputFile); err != nil {
		log.Fatalf("Could not launch browser: %v", err)
	}
}

func (cli *cli) parseFlags(args []string) error {
	var help, ver, debug bool

	fs := flag.NewFlagSet("domsnap", flag.ContinueOnError)
	options := extractor.NewOptions()

	// CONFIGURATIONS
	fs.StringVar(&cli.Options.Engine, "engine", options.Engine, "")
	fs.StringVar(&cli.Options.Engine, "e", options.Engine, "")
	fs.IntVar(&cli.Options.Timeout, "timeout", options.Timeout, "")
	fs.IntVar(&cli.Options.Timeout, "to", options.Timeout, "")
	fs.StringVar(&cli.Options.UserAgent, "user-agent", options.UserAgent, "")
	fs.StringVar(&cli.Options.UserAgent, "ua", options.UserAgent, "")
	fs.StringVar(&cli.Options.Bin, "bin", options.Bin, "")
	fs.StringVar(&cli.Options.Bin, "b", options.Bin, "")

	// OUTPUT
	fs.BoolVar(&cli.Options.Imprint, "imprint", options.Imprint, "")
	fs.BoolVar(&cli.Options.Imprint, "im", options.Imprint, "")
	fs.BoolVar(&debug, "debug", false, "")
	fs.BoolVar(&help, "help", false, "")
	fs.BoolVar(&help, "h", false, "")
	fs.BoolVar(&ver, "version", false, "")

	fs.Usage = func() {
		fmt.Print(usage)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if debug {
		log.SetLevel(log.DebugLevel)
	}

	if help {
		fmt.Print(usage)
		os.Exit(0)
	}

	if ver {
		fmt.Println("domsnap", version, "by", author)
		os.Exit(0)
	}

	if fs.NArg() != 2 {
		return fmt.Errorf("expected <url> <outputFile>, got %d argument(s)", fs.NArg())
	}

	cli.TargetURL = fs.Arg(0)
	cli.OutputFile = fs.Arg(1)

	if _, err := extractor.NewEngine(cli.Options.Engine, cli.Options); err != nil {
		return err
	}

	return nil
}
