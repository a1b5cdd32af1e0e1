package sim

import (
	"fmt"

	"golang.org/x/exp/rand"

	filter "github.com/scenekf/go-scenekf"
	"github.com/scenekf/go-scenekf/model"
	"github.com/scenekf/go-scenekf/noise"
	"github.com/scenekf/go-scenekf/slot"
	"gonum.org/v1/gonum/mat"
)

// Frame is a single simulation step
type Frame struct {
	// Step is frame number starting from 1
	Step int
	// Motion is the scene shift applied in this frame
	Motion filter.Motion
	// Truth is true scene state
	Truth *mat.VecDense
	// Meas is noisy detection of the scene state
	Meas *mat.VecDense
}

// Scene simulates a scene of static objects seen by a moving camera.
// Every step the whole scene shifts by the camera motion and a detector
// reports every slot with additive gaussian noise.
type Scene struct {
	cfg      Config
	model    *model.Scene
	truth    *mat.VecDense
	camera   filter.Noise
	detector filter.Noise
	step     int
}

// NewScene creates new Scene simulation and returns it.
// It returns error if cfg is invalid.
func NewScene(cfg Config) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l, err := slot.NewLayout(cfg.Slots)
	if err != nil {
		return nil, err
	}

	m, err := model.NewScene(l)
	if err != nil {
		return nil, err
	}

	camera, err := newCameraNoise(cfg.Camera.Jitter, cfg.Seed+1)
	if err != nil {
		return nil, fmt.Errorf("failed to create camera noise: %v", err)
	}

	detector, err := newDetectorNoise(l.Dim(), cfg.Detector.Std, cfg.Seed+2)
	if err != nil {
		return nil, fmt.Errorf("failed to create detector noise: %v", err)
	}

	truth, err := l.Pack(initBoxes(cfg))
	if err != nil {
		return nil, err
	}

	return &Scene{
		cfg:      cfg,
		model:    m,
		truth:    truth,
		camera:   camera,
		detector: detector,
	}, nil
}

func newCameraNoise(jitter float64, seed uint64) (filter.Noise, error) {
	if jitter == 0 {
		return noise.NewZero(2)
	}

	v := jitter * jitter
	return noise.NewGaussianWithSeed([]float64{0, 0}, mat.NewSymDense(2, []float64{v, 0, 0, v}), seed)
}

func newDetectorNoise(size int, std float64, seed uint64) (filter.Noise, error) {
	if std == 0 {
		return noise.NewZero(size)
	}

	return noise.NewDiagonalWithSeed(size, filter.Variance(std*std), seed)
}

func initBoxes(cfg Config) []slot.Box {
	rnd := rand.New(rand.NewSource(cfg.Seed))

	boxes := make([]slot.Box, cfg.Slots)
	for i := range boxes {
		boxes[i] = slot.Box{
			Conf: rnd.Float64(),
			X:    rnd.Float64() * cfg.Width,
			Y:    rnd.Float64() * cfg.Height,
			W:    10 + rnd.Float64()*0.1*cfg.Width,
			H:    10 + rnd.Float64()*0.1*cfg.Height,
		}
	}

	return boxes
}

// Model returns simulated scene model
func (s *Scene) Model() *model.Scene {
	return s.model
}

// Layout returns simulated scene slot layout
func (s *Scene) Layout() slot.Layout {
	return s.model.Layout()
}

// Truth returns current true scene state
func (s *Scene) Truth() mat.Vector {
	t := &mat.VecDense{}
	t.CloneFromVec(s.truth)

	return t
}

// Detect returns noisy detection of the current scene state
func (s *Scene) Detect() mat.Vector {
	y, _ := s.model.Observe(s.truth)
	y.AddVec(y, s.detector.Sample())

	return y
}

// Step moves the camera, detects the scene and returns the resulting frame.
func (s *Scene) Step() (Frame, error) {
	jitter := s.camera.Sample()
	dx := s.cfg.Camera.DX + jitter.AtVec(0)
	dy := s.cfg.Camera.DY + jitter.AtVec(1)

	truth, err := s.model.Propagate(s.truth, dx, dy)
	if err != nil {
		return Frame{}, err
	}
	s.truth = truth
	s.step++

	meas := &mat.VecDense{}
	meas.CloneFromVec(s.Detect())

	return Frame{
		Step: s.step,
		Motion: filter.Motion{
			DX: dx,
			DY: dy,
			Q:  s.cfg.Filter.ProcessVariance(),
		},
		Truth: mat.VecDenseCopyOf(truth),
		Meas:  meas,
	}, nil
}
