package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/esimov/ghtface"
	"github.com/esimov/ghtface/utils"
	"golang.org/x/term"
)

const HelpBanner = `
┌─┐┬ ┬┌┬┐┌─┐┌─┐┌─┐┌─┐
│ ┬├─┤ │ ├┤ ├─┤│  ├┤
└─┘┴ ┴ ┴ └  ┴ ┴└─┘└─┘

Generalized Hough Transform face and eye detector.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// result holds the relevant information about the detection process.
type result struct {
	path   string
	report string
	err    error
}

var (
	// imgurl holds the temporary file of a downloaded source image.
	imgurl *os.File

	// spinner used to instantiate and call the progress indicator.
	spinner *utils.Spinner
)

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source image, directory or URL")
	destination = flag.String("out", "", "Destination of the overlay image (optional)")
	blurKernel  = flag.Int("blur", 0, "Blur kernel size, must be odd (0 disables smoothing)")
	histeq      = flag.Bool("histeq", false, "Apply global histogram equalization")
	adaptive    = flag.Bool("adaptive", false, "Apply adaptive (tile based) histogram equalization")
	autothresh  = flag.Bool("autothresh", true, "Derive the edge thresholds from the image")
	faceThresh  = flag.Int("facethresh", 0, "Face edge threshold override")
	eyeThresh   = flag.Int("eyethresh", 0, "Eye edge threshold override")
	faceMin     = flag.Int("facemin", 0, "Minimum face acceptance score")
	eyeMin      = flag.Int("eyemin", 0, "Minimum eye peak score")
	maxDim      = flag.Int("maxdim", 0, "Downscale the longest image side to this size before detection (0 disables)")
	selfTest    = flag.Bool("test", false, "Run the detector against synthetic shapes")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	proc := &ghtface.Processor{
		HistEq:            *histeq,
		AdaptiveHistEq:    *adaptive,
		BlurKernel:        *blurKernel,
		AutoThreshold:     *autothresh,
		FaceEdgeThreshold: *faceThresh,
		EyeEdgeThreshold:  *eyeThresh,
		FaceMinScore:      *faceMin,
		EyeMinPeak:        *eyeMin,
		MaxDim:            *maxDim,
		Models:            ghtface.DefaultModels(),
	}

	if *selfTest {
		runSelfTest(proc)
		return
	}

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ GHTFACE", utils.StatusMessage),
		utils.DecorateText("is analyzing the image...", utils.DefaultMessage))
	spinner = utils.NewSpinner(spinnerText, time.Millisecond*80)

	// Supported files
	validExtensions := []string{".jpg", ".png", ".jpeg", ".bmp", ".gif"}

	var (
		fs  os.FileInfo
		err error
	)

	// Check if the source path is a local image or URL.
	if utils.IsValidUrl(*source) {
		src, err := utils.DownloadImage(*source)
		if src != nil {
			defer os.Remove(src.Name())
		}
		if err != nil {
			log.Fatalf(
				utils.DecorateText("Failed to load the source image: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}
		fs, err = src.Stat()
		if err != nil {
			log.Fatalf(
				utils.DecorateText("Unable to stat the downloaded image: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}
		imgurl = src
	} else {
		// Check if the source is a pipe name or a regular file.
		if *source == pipeName {
			fs, err = os.Stdin.Stat()
		} else {
			fs, err = os.Stat(*source)
		}
		if err != nil {
			log.Fatalf(
				utils.DecorateText("Failed to load the source image: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}
	}

	now := time.Now()

	switch mode := fs.Mode(); {
	case mode.IsDir():
		// Limit the concurrently running workers to maxWorkers.
		if *workers <= 0 || *workers > maxWorkers {
			*workers = runtime.NumCPU()
		}

		// Process the image files from the specified directory concurrently.
		// The models are read only and shared between the workers.
		var wg sync.WaitGroup
		ch := make(chan result)
		done := make(chan interface{})
		defer close(done)

		paths, errc := walkDir(done, *source, validExtensions)

		wg.Add(*workers)
		for i := 0; i < *workers; i++ {
			go func() {
				defer wg.Done()
				consumer(done, paths, *destination, proc, ch)
			}()
		}

		// Close the channel after the values are consumed.
		go func() {
			defer close(ch)
			wg.Wait()
		}()

		// Consume the channel values.
		for res := range ch {
			printStatus(res)
		}

		if err := <-errc; err != nil {
			fmt.Fprint(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
		}

	case mode.IsRegular() || mode&os.ModeNamedPipe != 0:
		spinner.Start()
		res := processor(*source, *destination, proc)
		spinner.Stop()
		printStatus(res)
	}

	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n",
		utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
}

// runSelfTest probes the full pipeline against synthetic shapes: an ellipse
// outline through the face path and a circle outline through the direct eye
// voting path.
func runSelfTest(proc *ghtface.Processor) {
	fmt.Println("[TEST] synthetic images + tables + detection")

	imgE := ghtface.ArtificialEllipseImage(640, 480)
	det, err := proc.DetectGray(imgE)
	if err != nil {
		log.Fatalf(utils.DecorateText("Self test failed: %v", utils.ErrorMessage), err)
	}
	fmt.Printf("Expected ellipse center=(%d,%d)\n", imgE.Width/2, imgE.Height/2)
	if det.FaceOK {
		fmt.Printf("Detected ellipse center=(%d,%d) score=%d scale=(%d,%d)\n",
			det.FaceX, det.FaceY, det.FaceScore, det.FaceRx, det.FaceRy)
	} else {
		fmt.Println("Detected ellipse: NOTFOUND")
	}

	imgC := ghtface.ArtificialCircleImage(320, 320)
	fmt.Printf("Expected circle center=(%d,%d)\n", imgC.Width/2, imgC.Height/2)
	if pk, r, ok := proc.BestCircle(imgC); ok {
		fmt.Printf("Detected circle center=(%d,%d) score=%d r=%d\n",
			int(math.Round(pk.Bx)), int(math.Round(pk.By)), pk.Score, r)
	} else {
		fmt.Println("Detected circle: NOTFOUND")
	}

	fmt.Println("[TEST] done.")
}

// walkDir starts a goroutine to walk the specified directory tree in recursive manner
// and send the path of each supported image file on the string channel.
// It sends the result of the walk on the error channel.
// It terminates in case done channel is closed.
func walkDir(
	done <-chan interface{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			if !isValidExtension(filepath.Ext(info.Name()), srcExts) {
				return nil
			}

			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// consumer reads the path names from the paths channel, runs the detector
// against each source image and sends the results on a new channel.
func consumer(
	done <-chan interface{},
	paths <-chan string,
	dest string,
	proc *ghtface.Processor,
	res chan<- result,
) {
	for src := range paths {
		var overlay string
		if dest != "" {
			overlay = filepath.Join(dest, filepath.Base(src))
		}

		select {
		case <-done:
			return
		case res <- processor(src, overlay, proc):
		}
	}
}

// processor runs the detector over the source image and optionally writes
// the overlay rendering to the destination path.
func processor(in, out string, proc *ghtface.Processor) result {
	src, err := openSource(in)
	if err != nil {
		return result{path: in, err: err}
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}

	img, err := ghtface.DecodeImage(src)
	if err != nil {
		return result{path: in, err: fmt.Errorf("unable to decode the source image: %w", err)}
	}

	det, err := proc.Detect(img)
	if err != nil {
		return result{path: in, err: err}
	}

	if out != "" {
		if err := writeOverlay(out, img, det); err != nil {
			return result{path: in, err: err}
		}
	}
	return result{path: in, report: det.String()}
}

// openSource resolves the input flag to a readable stream: a downloaded
// temporary file, stdin or a regular file.
func openSource(in string) (io.Reader, error) {
	if utils.IsValidUrl(in) {
		if _, err := imgurl.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return imgurl, nil
	}
	if in == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return os.Stdin, nil
	}

	f, err := os.Open(in)
	if err != nil {
		return nil, fmt.Errorf("unable to open the source file: %w", err)
	}
	return f, nil
}

// writeOverlay renders the detection over the source image and encodes it
// into the destination file.
func writeOverlay(out string, img *image.NRGBA, det *ghtface.Detection) error {
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("unable to create the destination directory: %w", err)
		}
	}

	f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("unable to create the destination file: %w", err)
	}
	defer f.Close()

	return ghtface.EncodeImage(f, ghtface.DrawDetection(img, det), filepath.Ext(out))
}

// printStatus displays the detection report or the failure reason.
func printStatus(res result) {
	if res.err != nil {
		fmt.Fprintf(os.Stderr,
			utils.DecorateText("\nError processing the image: %s", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", res.err.Error()), utils.DefaultMessage),
		)
		return
	}
	if res.path != pipeName {
		fmt.Fprintf(os.Stderr, "%s\n", utils.DecorateText(res.path, utils.StatusMessage))
	}
	fmt.Print(res.report)
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if ex == ext {
			return true
		}
	}
	return false
}
