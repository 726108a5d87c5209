/*
Package ghtface locates a face and a pair of eyes in a still image or video frame
using a Generalized Hough Transform: edge gradient orientations vote for candidate
shape centers through precomputed offset tables built from synthetic ellipse and
circle templates. No training data and no external vision library is involved.

The package provides a command line interface, supporting various flags for the
preprocessing and threshold calibration options. To check the supported commands type:

	$ ghtface --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"os"

		"github.com/esimov/ghtface"
	)

	func main() {
		f, err := os.Open("frame.jpg")
		if err != nil {
			fmt.Printf("Error opening the source image: %s", err.Error())
			return
		}
		defer f.Close()

		img, err := ghtface.DecodeImage(f)
		if err != nil {
			fmt.Printf("Error decoding the source image: %s", err.Error())
			return
		}

		p := &ghtface.Processor{
			AutoThreshold: true,
			Models:        ghtface.DefaultModels(),
		}

		det, err := p.Detect(img)
		if err != nil {
			fmt.Printf("Error detecting the face: %s", err.Error())
			return
		}
		fmt.Print(det)
	}
*/
package ghtface
