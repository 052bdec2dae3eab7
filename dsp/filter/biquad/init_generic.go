//go:build !amd64 || purego

package biquad

import (
	_ "github.com/W47K3R9/LudEQ/dsp/filter/biquad/internal/arch/generic" // register generic backend
)
