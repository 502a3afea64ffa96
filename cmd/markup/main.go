package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/esimov/markup"
	"github.com/esimov/markup/export"
	"github.com/esimov/markup/imop"
	"github.com/esimov/markup/render"
	"github.com/esimov/markup/utils"
	"golang.org/x/term"
)

const HelpBanner = `
┌┬┐┌─┐┬─┐┬┌─┬ ┬┌─┐
│││├─┤├┬┘├┴┐│ │├─┘
┴ ┴┴ ┴┴└─┴ ┴└─┘┴

Screenshot annotation engine.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source image: file, URL or - for stdin")
	destination = flag.String("out", pipeName, "Destination: file or - for stdout")
	copyCommand = flag.String("copy-command", "", "Shell command receiving the PNG image on stdin when copying")
	script      = flag.String("script", "", "JSON file with the input events to replay")
	initialTool = flag.String("tool", "pointer", "Initial tool")
	strokeColor = flag.String("color", "", "Drawing color (#rrggbb)")
	palette     = flag.String("palette", "", "Comma separated palette colors picked by the script (#rrggbb,...)")
	strokeWidth = flag.Float64("width", 3, "Stroke width")
	annotSize   = flag.Float64("size", 1, "Annotation size factor")
	fontSize    = flag.Float64("font", 24, "Font size of text annotations")
	corner      = flag.Float64("corner", 12, "Corner roundness of rectangles")
	history     = flag.Int("history", 0, "Maximum number of undo steps (0 keeps all)")
	enterAction = flag.String("enter", "save", "Action on Enter: none, exit, save, copy, save-and-exit")
	escAction   = flag.String("escape", "exit", "Action on Escape: none, exit, save, copy, save-and-exit")
	quality     = flag.String("quality", "bilinear", "Background sampling: bilinear or nearest")
	blurRadius  = flag.Int("blur", 10, "Blur radius of blur regions")
	pixelSize   = flag.Int("pixel", 12, "Cell size of pixelated regions")
	blendMode   = flag.String("blend", "multiply", "Highlighter blend mode: normal, darken, lighten, multiply, screen, overlay")
	faceDetect  = flag.Bool("face", false, "Redact the detected faces")
	redact      = flag.String("redact", "blur", "Face redaction filter: blur or pixelate")
	faceAngle   = flag.Float64("angle", 0.0, "Plane rotated faces angle")
	cascade     = flag.String("cc", "", "Cascade classifier")
	debug       = flag.Bool("debug", false, "Use debugger")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	utils.NoColor.Store(!term.IsTerminal(int(os.Stderr.Fd())))
	if *debug {
		markup.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if *faceDetect && len(*cascade) == 0 {
		log.Fatal(utils.DecorateText("Please specify a face classifier in case you are using the -face flag!\n", utils.ErrorMessage))
	}
	if *destination == pipeName && term.IsTerminal(int(os.Stdout.Fd())) {
		log.Fatal(utils.DecorateText("`-` should be used with a pipe for stdout", utils.ErrorMessage))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		log.Fatalf("%s %s",
			utils.DecorateText("Error annotating the image:", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
	}
}

func run(ctx context.Context) error {
	now := time.Now()

	cfg, err := newConfig()
	if err != nil {
		return err
	}
	opts, err := newOptions()
	if err != nil {
		return err
	}
	format, err := export.FormatFromPath(*destination)
	if err != nil {
		return err
	}

	bg, err := loadBackground(ctx, *source)
	if err != nil {
		return err
	}
	font := render.DefaultMeasurer()
	ed, err := markup.NewEditor(bg, cfg, font)
	if err != nil {
		return err
	}
	comp, err := render.NewCompositor(opts, font)
	if err != nil {
		return err
	}

	if *faceDetect {
		if err := redactFaces(ed); err != nil {
			return err
		}
	}

	saver := export.NewExporter(comp, format, export.NewSink(*destination, os.Stdout))
	var copier *export.Exporter
	if *copyCommand != "" {
		copier = export.NewExporter(comp, export.PNG, export.CommandSink{Command: *copyCommand})
	}

	var (
		pending []<-chan error
		saved   bool
		exited  bool
	)
	handle := func(a markup.Action) bool {
		switch a {
		case markup.ActionSave, markup.ActionSaveAndExit:
			pending = append(pending, saver.Start(ctx, ed.Snapshot()))
			saved = true
			exited = a == markup.ActionSaveAndExit
		case markup.ActionCopy:
			if copier != nil {
				pending = append(pending, copier.Start(ctx, ed.Snapshot()))
			}
		case markup.ActionExit:
			exited = true
		}
		return exited
	}

	if *script != "" {
		steps, err := openScript(*script)
		if err != nil {
			return err
		}
		if err := replay(ed, steps, handle); err != nil {
			return err
		}
	}
	if !saved && !exited {
		handle(markup.ActionSave)
	}

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("✎ MARKUP", utils.StatusMessage),
		utils.DecorateText("is exporting the image...", utils.DefaultMessage))
	spinner := utils.NewSpinner(os.Stderr, spinnerText, time.Millisecond*200, true)
	spinner.StopMsg = fmt.Sprintf("%s %s\n",
		utils.DecorateText("✎ MARKUP", utils.StatusMessage),
		utils.DecorateText("is exporting the image... ✔", utils.DefaultMessage))
	spinner.Start()

	var errs []error
	for _, done := range pending {
		errs = append(errs, <-done)
	}
	spinner.Stop()

	if err := errors.Join(errs...); err != nil {
		return err
	}
	printStatus(*destination, len(pending), time.Since(now))
	return nil
}

// newConfig builds the editor configuration from the command line flags.
func newConfig() (markup.Config, error) {
	cfg := markup.DefaultConfig()
	tool, err := markup.ParseTool(*initialTool)
	if err != nil {
		return cfg, err
	}
	if cfg.EnterAction, err = markup.ParseAction(*enterAction); err != nil {
		return cfg, err
	}
	if cfg.EscapeAction, err = markup.ParseAction(*escAction); err != nil {
		return cfg, err
	}
	if *palette != "" {
		cfg.Palette = cfg.Palette[:0:0]
		for _, hex := range strings.Split(*palette, ",") {
			c, err := utils.HexToNRGBA(strings.TrimSpace(hex))
			if err != nil {
				return cfg, err
			}
			cfg.Palette = append(cfg.Palette, c)
		}
	}
	if *strokeColor != "" {
		c, err := utils.HexToNRGBA(*strokeColor)
		if err != nil {
			return cfg, err
		}
		cfg.Style = cfg.Style.WithColor(c)
	}
	cfg.InitialTool = tool
	cfg.Style.Width = *strokeWidth
	cfg.AnnotationSize = *annotSize
	cfg.FontSize = *fontSize
	cfg.CornerRoundness = *corner
	cfg.HistoryLimit = *history
	cfg.Debug = *debug
	return cfg, cfg.Validate()
}

// newOptions builds the compositor settings from the command line flags.
func newOptions() (render.Options, error) {
	opts := render.DefaultOptions()
	q, err := render.ParseQuality(*quality)
	if err != nil {
		return opts, err
	}
	opts.Quality = q
	opts.BlurRadius = *blurRadius
	opts.PixelSize = *pixelSize
	opts.HighlightBlend = imop.BlendMode(*blendMode)
	return opts, opts.Validate()
}

// loadBackground reads the image to annotate from a URL, the standard
// input or a file.
func loadBackground(ctx context.Context, src string) (*image.NRGBA, error) {
	var r io.Reader
	switch {
	case utils.IsValidUrl(src):
		f, err := utils.DownloadImage(ctx, src)
		if err != nil {
			return nil, err
		}
		defer os.Remove(f.Name())
		defer f.Close()
		r = f
	case src == pipeName:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		r = os.Stdin
	default:
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("unable to open the source file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return markup.LoadImage(r)
}

func openScript(path string) ([]step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open the event script: %w", err)
	}
	defer f.Close()
	return readScript(f)
}

func redactFaces(ed *markup.Editor) error {
	kind := markup.Blur
	switch *redact {
	case "blur":
	case "pixelate":
		kind = markup.Pixelate
	default:
		return fmt.Errorf("unsupported redaction filter: %q", *redact)
	}
	fd, err := markup.LoadFaceDetector(*cascade)
	if err != nil {
		return err
	}
	fd.Angle = *faceAngle
	n, err := ed.RedactFaces(fd, kind)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(os.Stderr, utils.DecorateText("No faces were detected.", utils.WarningMessage))
		return nil
	}
	fmt.Fprintf(os.Stderr, "%s %s\n",
		utils.DecorateText("Redacted faces:", utils.StatusMessage),
		utils.DecorateText(fmt.Sprint(n), utils.SuccessMessage))
	return nil
}

// printStatus displays the relevant information about the export.
func printStatus(fname string, exports int, elapsed time.Duration) {
	if exports > 0 && fname != pipeName {
		fmt.Fprintf(os.Stderr, "\nThe annotated image has been saved as: %s\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
		)
	}
	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(elapsed), utils.SuccessMessage))
}
