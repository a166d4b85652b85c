package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/born-ml/detect/backend/cpu"
	"github.com/born-ml/detect/nn"
	"github.com/born-ml/detect/tensor"
)

type curve struct {
	name string
	xys  plotter.XYs
}

type plotOptions struct {
	loss   nn.LossType
	sigma  float64
	alpha  float64
	gamma  float64
	points int
}

func runPlot(args []string) error {
	fs := flag.NewFlagSet("plot", flag.ContinueOnError)
	lossName := fs.String("loss", "smooth_l1", fmt.Sprintf("loss to plot: %v", nn.LossTypes()))
	out := fs.String("out", "loss.png", "output image path (.png, .svg, .pdf)")
	sigma := fs.Float64("sigma", 1, "smooth-L1 sigma")
	alpha := fs.Float64("alpha", 0.25, "focal alpha")
	gamma := fs.Float64("gamma", 2, "focal gamma")
	points := fs.Int("points", 201, "number of samples along the x axis")
	if err := fs.Parse(args); err != nil {
		return err
	}

	lt, err := nn.ParseLossType(*lossName)
	if err != nil {
		return err
	}
	if *points < 2 {
		return errors.New("plot: -points must be at least 2")
	}

	curves, xLabel, err := lossCurves(plotOptions{loss: lt, sigma: *sigma, alpha: *alpha, gamma: *gamma, points: *points})
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s loss", lt)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "loss"
	p.Add(plotter.NewGrid())

	palette := []color.RGBA{
		{R: 20, G: 80, B: 200, A: 255},
		{R: 200, G: 30, B: 30, A: 255},
		{R: 120, G: 120, B: 120, A: 255},
	}
	for i, c := range curves {
		line, err := plotter.NewLine(c.xys)
		if err != nil {
			return fmt.Errorf("plot %s: %w", c.name, err)
		}
		line.Color = palette[i%len(palette)]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(c.name, line)
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, *out); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	log.Printf("wrote %s", *out)
	return nil
}

// lossCurves evaluates the selected loss on the CPU backend over a sweep.
func lossCurves(o plotOptions) ([]curve, string, error) {
	backend := cpu.New()

	switch o.loss {
	case nn.LossSmoothL1:
		xs := sweep(-3/o.sigma, 3/o.sigma, o.points)
		c, err := evalCurve(backend, fmt.Sprintf("sigma=%g", o.sigma), nn.LossSmoothL1, xs,
			func(x float64) ([]float32, []float32) { return []float32{float32(x)}, []float32{0} },
			nn.WithSigma(o.sigma))
		return []curve{c}, "residual", err

	case nn.LossSigmoidBCE:
		xs := sweep(-6, 6, o.points)
		pos, err := evalCurve(backend, "label=1", nn.LossSigmoidBCE, xs,
			func(x float64) ([]float32, []float32) { return []float32{float32(x)}, []float32{1} })
		if err != nil {
			return nil, "", err
		}
		neg, err := evalCurve(backend, "label=0", nn.LossSigmoidBCE, xs,
			func(x float64) ([]float32, []float32) { return []float32{float32(x)}, []float32{0} })
		return []curve{pos, neg}, "logit", err

	case nn.LossSoftmaxCE:
		xs := sweep(-6, 6, o.points)
		c, err := evalCurve(backend, "2 classes", nn.LossSoftmaxCE, xs,
			func(x float64) ([]float32, []float32) { return []float32{float32(x), 0}, []float32{0} })
		return []curve{c}, "logit margin of the true class", err

	case nn.LossFocal:
		xs := sweep(0.01, 1, o.points)
		input := func(x float64) ([]float32, []float32) { return []float32{float32(x)}, []float32{1} }
		focal, err := evalCurve(backend, fmt.Sprintf("gamma=%g alpha=%g", o.gamma, o.alpha), nn.LossFocal, xs, input,
			nn.WithFromSigmoid(), nn.WithDenseLabels(), nn.WithAlpha(o.alpha), nn.WithGamma(o.gamma))
		if err != nil {
			return nil, "", err
		}
		ce, err := evalCurve(backend, fmt.Sprintf("gamma=0 alpha=%g", o.alpha), nn.LossFocal, xs, input,
			nn.WithFromSigmoid(), nn.WithDenseLabels(), nn.WithAlpha(o.alpha), nn.WithGamma(0))
		return []curve{focal, ce}, "probability of the true class", err

	default:
		return nil, "", fmt.Errorf("plot: no curve for %s", o.loss)
	}
}

// evalCurve runs one batched Forward: sample i holds the prediction and label
// built from xs[i].
func evalCurve(
	backend *cpu.Backend,
	name string,
	lt nn.LossType,
	xs []float64,
	sample func(x float64) (pred, label []float32),
	opts ...nn.Option,
) (curve, error) {
	loss, err := nn.NewLoss(lt, backend, opts...)
	if err != nil {
		return curve{}, err
	}

	var preds, labels []float32
	for _, x := range xs {
		p, l := sample(x)
		preds = append(preds, p...)
		labels = append(labels, l...)
	}
	n := len(xs)

	pred, err := tensor.FromSlice(preds, tensor.Shape{n, len(preds) / n}, backend)
	if err != nil {
		return curve{}, err
	}
	labelShape := tensor.Shape{n, len(labels) / n}
	if lt == nn.LossSoftmaxCE {
		labelShape = tensor.Shape{n}
	}
	label, err := tensor.FromSlice(labels, labelShape, backend)
	if err != nil {
		return curve{}, err
	}

	values := loss.Forward(pred, label, nil).Data()
	xys := make(plotter.XYs, n)
	for i, x := range xs {
		xys[i].X = x
		xys[i].Y = float64(values[i])
	}
	return curve{name: name, xys: xys}, nil
}

func sweep(lo, hi float64, n int) []float64 {
	xs := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range xs {
		xs[i] = lo + float64(i)*step
	}
	return xs
}
