/*
Copyright © 2026 the GISAS authors.
This file is part of GISAS.

GISAS is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GISAS is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GISAS.  If not, see <http://www.gnu.org/licenses/>.
*/

package gisasutil

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Knetic/govaluate"
	"github.com/spatialmodel/gisas"
	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/science/formfactor"
	"github.com/spatialmodel/gisas/science/interference"
	"github.com/spatialmodel/gisas/simulation"
	"github.com/spf13/cast"
)

// exprFuncs are the functions available in sample expressions.
var exprFuncs = map[string]govaluate.ExpressionFunction{
	"sqrt": unary("sqrt", math.Sqrt),
	"exp":  unary("exp", math.Exp),
	"sin":  unary("sin", math.Sin),
	"cos":  unary("cos", math.Cos),
	"deg":  unary("deg", func(x float64) float64 { return x * math.Pi / 180 }),
}

func unary(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("gisas: got %d arguments for function '%s', but needs 1", len(args), name)
		}
		x, err := cast.ToFloat64E(args[0])
		if err != nil {
			return nil, fmt.Errorf("gisas: function '%s': %v", name, err)
		}
		return f(x), nil
	}
}

// Expr is a number in a sample file. It is either a TOML number or a
// string holding an arithmetic expression over the sample parameters,
// such as "2*radius". The functions sqrt, exp, sin, cos and deg
// (degrees to radians) are available, as is the constant pi.
type Expr struct {
	text  string
	expr  *govaluate.EvaluableExpression
	value float64
	set   bool
}

// Num returns a constant Expr.
func Num(v float64) Expr { return Expr{value: v, set: true} }

// ParseExpr returns the Expr for text.
func ParseExpr(text string) (Expr, error) {
	var e Expr
	err := e.parse(text)
	return e, err
}

func (e *Expr) parse(text string) error {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(text, exprFuncs)
	if err != nil {
		return fmt.Errorf("gisas: parsing expression %q: %v", text, err)
	}
	e.text, e.expr, e.set = text, expr, true
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (e *Expr) UnmarshalTOML(v interface{}) error {
	if s, ok := v.(string); ok {
		return e.parse(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return fmt.Errorf("gisas: sample value %v is neither a number nor an expression", v)
	}
	e.value, e.set = f, true
	return nil
}

// IsSet reports whether the value was given.
func (e Expr) IsSet() bool { return e.set }

// Vars returns the parameters the expression refers to.
func (e Expr) Vars() []string {
	if e.expr == nil {
		return nil
	}
	return e.expr.Vars()
}

// Eval returns the value of the expression for the given parameters.
func (e Expr) Eval(params govaluate.MapParameters) (float64, error) {
	if e.expr == nil {
		return e.value, nil
	}
	r, err := e.expr.Eval(params)
	if err != nil {
		return 0, fmt.Errorf("gisas: evaluating %q: %v", e.text, err)
	}
	f, ok := r.(float64)
	if !ok {
		return 0, fmt.Errorf("gisas: expression %q evaluates to %v, which is not a number", e.text, r)
	}
	return f, nil
}

func (e Expr) String() string {
	if e.expr != nil {
		return e.text
	}
	return fmt.Sprint(e.value)
}

// Vector is a three-dimensional vector in a sample file.
type Vector struct {
	X, Y, Z Expr
}

// SampleFile is the TOML description of a sample. Lengths are in nm,
// angles in radians and magnetic quantities in A/m.
type SampleFile struct {
	// Parameters holds the default values of the parameters used in
	// expressions.
	Parameters map[string]float64

	// Distributions vary parameters over a range of values; the
	// simulation averages over them.
	Distributions []DistributionConfig

	// Materials are referred to by name in layers and particles. The
	// name "vacuum" need not be defined.
	Materials map[string]MaterialConfig

	// Layers are listed from the ambient medium down to the substrate.
	Layers []LayerConfig

	ExternalField   Vector
	CrossCorrLength Expr
}

// DistributionConfig describes the distribution of a parameter. Type
// is one of gate (Min, Max), gaussian (Mean, StdDev) or lognormal
// (Median, Scale).
type DistributionConfig struct {
	Name, Type                            string
	Min, Max, Mean, StdDev, Median, Scale float64
	Samples                               int
	SigmaFactor                           float64
}

// MaterialConfig describes a material by its refractive index
// n = 1 - Delta + i·Beta, or by a scattering length density [nm⁻²].
type MaterialConfig struct {
	Delta, Beta      Expr
	SLDReal, SLDImag Expr
	Magnetization    Vector
}

// RoughnessConfig describes an interface roughness.
type RoughnessConfig struct {
	Sigma, Hurst, CorrLength Expr
}

// LayerConfig describes one layer.
type LayerConfig struct {
	Material       string
	Thickness      Expr
	Roughness      *RoughnessConfig
	NumberOfSlices int
	Layouts        []LayoutConfig
}

// LayoutConfig describes a particle layout. Approximation is
// decoupling (the default) or ssca.
type LayoutConfig struct {
	Approximation  string
	SurfaceDensity Expr
	Interference   *InterferenceConfig
	Particles      []ParticleConfig
}

// InterferenceConfig describes an interference function. Type is
// radialparacrystal or lattice1d. Profile selects the distribution of
// the paracrystal distances (cauchy, gauss or gate) or the decay of the
// lattice (cauchy or gauss); Omega is its width.
type InterferenceConfig struct {
	Type                                    string
	PeakDistance, DampingLength, DomainSize Expr
	Kappa                                   Expr
	Length, Xi                              Expr
	Profile                                 string
	Omega                                   Expr
}

// ParticleConfig describes a particle. Shape is one of sphere (Radius),
// cylinder (Radius, Height), box (Length, Width, Height), spheroid
// (Radius, Height), gaussiansphere (Radius, Sigma) or dot.
//
// A particle with a Core is a core-shell particle whose shell is
// described by the particle itself. A particle with Parts is a rigid
// composite of them. A particle with a Distribution is a polydisperse
// population whose members are built with the distribution parameter
// set to each sampled value.
type ParticleConfig struct {
	Shape                                string
	Radius, Height, Length, Width, Sigma Expr
	Material                             string
	Position                             Vector
	Abundance                            Expr
	Core                                 *ParticleConfig
	Parts                                []ParticleConfig
	Distribution                         *DistributionConfig
}

// ReadSample decodes a sample description from r.
func ReadSample(r io.Reader) (*SampleFile, error) {
	f := new(SampleFile)
	md, err := toml.NewDecoder(r).Decode(f)
	if err != nil {
		return nil, fmt.Errorf("gisas: reading sample: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("gisas: unknown sample fields: %s", strings.Join(keys, ", "))
	}
	if len(f.Layers) == 0 {
		return nil, fmt.Errorf("gisas: the sample has no layers")
	}
	return f, nil
}

// LoadSample reads a sample description from a file.
func LoadSample(path string) (*SampleFile, error) {
	r, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("gisas: opening sample file: %v", err)
	}
	defer r.Close()
	return ReadSample(r)
}

// ParameterDistributions returns the parameter distributions the
// simulation should average over.
func (f *SampleFile) ParameterDistributions() ([]simulation.ParameterDistribution, error) {
	r := make([]simulation.ParameterDistribution, len(f.Distributions))
	for i, d := range f.Distributions {
		dist, err := d.distribution()
		if err != nil {
			return nil, err
		}
		r[i] = simulation.ParameterDistribution{
			Name:         d.Name,
			Distribution: dist,
			Samples:      d.samples(),
			SigmaFactor:  d.SigmaFactor,
		}
	}
	return r, nil
}

func (d DistributionConfig) distribution() (gisas.Distribution, error) {
	switch strings.ToLower(d.Type) {
	case "gate":
		return gisas.DistributionGate{Min: d.Min, Max: d.Max}, nil
	case "gaussian":
		return gisas.DistributionGaussian{Mean: d.Mean, StdDev: d.StdDev}, nil
	case "lognormal":
		return gisas.DistributionLogNormal{Median: d.Median, Scale: d.Scale}, nil
	default:
		return nil, fmt.Errorf("gisas: distribution %q has invalid type %q", d.Name, d.Type)
	}
}

func (d DistributionConfig) samples() int {
	if d.Samples == 0 {
		return 1
	}
	return d.Samples
}

// Build implements simulation.SampleBuilder. Values in params override
// the defaults in f.Parameters.
func (f *SampleFile) Build(params map[string]float64) (*gisas.MultiLayer, error) {
	p := make(govaluate.MapParameters, len(f.Parameters)+len(params)+1)
	p["pi"] = math.Pi
	for k, v := range f.Parameters {
		p[k] = v
	}
	for k, v := range params {
		p[k] = v
	}
	b := &builder{file: f, params: p}
	ml := &gisas.MultiLayer{
		ExternalField:   b.vector(f.ExternalField),
		CrossCorrLength: b.num(f.CrossCorrLength),
	}
	for i, lc := range f.Layers {
		l := gisas.Layer{
			Thickness:      b.num(lc.Thickness),
			Material:       b.material(lc.Material),
			NumberOfSlices: lc.NumberOfSlices,
		}
		if lc.Roughness != nil {
			l.Roughness = &gisas.Roughness{
				Sigma:      b.num(lc.Roughness.Sigma),
				Hurst:      b.num(lc.Roughness.Hurst),
				CorrLength: b.num(lc.Roughness.CorrLength),
			}
		}
		for j, lay := range lc.Layouts {
			layout, err := b.layout(lay)
			if err != nil {
				return nil, fmt.Errorf("gisas: layout %d of layer %d: %v", j, i, err)
			}
			l.Layouts = append(l.Layouts, layout)
		}
		if b.err != nil {
			return nil, fmt.Errorf("gisas: layer %d: %v", i, b.err)
		}
		ml.Layers = append(ml.Layers, l)
	}
	if b.err != nil {
		return nil, b.err
	}
	return ml, nil
}

// builder evaluates sample values, keeping the first error.
type builder struct {
	file   *SampleFile
	params govaluate.MapParameters
	err    error
}

func (b *builder) num(e Expr) float64 {
	if b.err != nil {
		return 0
	}
	v, err := e.Eval(b.params)
	if err != nil {
		b.err = err
	}
	return v
}

func (b *builder) vector(v Vector) geometry.R3 {
	return geometry.R3{X: b.num(v.X), Y: b.num(v.Y), Z: b.num(v.Z)}
}

func (b *builder) material(name string) gisas.Material {
	mc, ok := b.file.Materials[name]
	if !ok {
		if name == "" || name == "vacuum" {
			return gisas.Vacuum()
		}
		if b.err == nil {
			b.err = fmt.Errorf("gisas: undefined material %q", name)
		}
		return gisas.Material{}
	}
	return gisas.Material{
		Name:          name,
		Delta:         b.num(mc.Delta),
		Beta:          b.num(mc.Beta),
		SLD:           complex(b.num(mc.SLDReal), b.num(mc.SLDImag)),
		Magnetization: b.vector(mc.Magnetization),
	}
}

func (b *builder) layout(lc LayoutConfig) (gisas.ParticleLayout, error) {
	l := gisas.ParticleLayout{SurfaceDensity: b.num(lc.SurfaceDensity)}
	switch strings.ToLower(lc.Approximation) {
	case "", "decoupling":
		l.Approximation = gisas.Decoupling
	case "ssca":
		l.Approximation = gisas.SSCA
	default:
		return l, fmt.Errorf("invalid approximation %q", lc.Approximation)
	}
	if lc.Interference != nil {
		iff, err := b.interference(*lc.Interference)
		if err != nil {
			return l, err
		}
		l.Interference = iff
	}
	for _, pc := range lc.Particles {
		p, err := b.particle(pc)
		if err != nil {
			return l, err
		}
		l.Particles = append(l.Particles, p)
	}
	return l, b.err
}

func (b *builder) interference(ic InterferenceConfig) (interference.Function, error) {
	omega := b.num(ic.Omega)
	profile := strings.ToLower(ic.Profile)
	switch strings.ToLower(ic.Type) {
	case "", "none":
		return nil, nil
	case "radialparacrystal":
		var pdf interference.Distribution1D
		switch profile {
		case "cauchy":
			pdf = interference.Cauchy{Omega: omega}
		case "", "gauss":
			pdf = interference.Gauss{Omega: omega}
		case "gate":
			pdf = interference.Gate{Omega: omega}
		default:
			return nil, fmt.Errorf("invalid paracrystal profile %q", ic.Profile)
		}
		return interference.RadialParaCrystal{
			PeakDistance:        b.num(ic.PeakDistance),
			DampingLength:       b.num(ic.DampingLength),
			DomainSize:          b.num(ic.DomainSize),
			SizeSpacingCoupling: b.num(ic.Kappa),
			PDF:                 pdf,
		}, nil
	case "lattice1d":
		var decay interference.Distribution1D
		switch profile {
		case "", "cauchy":
			decay = interference.CauchyDecay{Omega: omega}
		case "gauss":
			decay = interference.GaussDecay{Omega: omega}
		default:
			return nil, fmt.Errorf("invalid lattice decay %q", ic.Profile)
		}
		return interference.Lattice1D{Length: b.num(ic.Length), Xi: b.num(ic.Xi), Decay: decay}, nil
	default:
		return nil, fmt.Errorf("invalid interference function %q", ic.Type)
	}
}

func (b *builder) abundance(pc ParticleConfig) float64 {
	if !pc.Abundance.IsSet() {
		return 1
	}
	return b.num(pc.Abundance)
}

func (b *builder) particle(pc ParticleConfig) (gisas.IParticle, error) {
	if pc.Distribution != nil {
		return b.distribution(pc)
	}
	weight := b.abundance(pc)
	pos := b.vector(pc.Position)
	if len(pc.Parts) > 0 {
		c := gisas.Composite{Position: pos, Weight: weight}
		for _, part := range pc.Parts {
			p, err := b.particle(part)
			if err != nil {
				return nil, err
			}
			c.Parts = append(c.Parts, p)
		}
		return c, b.err
	}
	shape, err := b.shape(pc)
	if err != nil {
		return nil, err
	}
	p := gisas.Particle{Shape: shape, Material: b.material(pc.Material), Weight: weight}
	if pc.Core == nil {
		p.Position = pos
		return p, b.err
	}
	coreShape, err := b.shape(*pc.Core)
	if err != nil {
		return nil, err
	}
	core := gisas.Particle{
		Shape:    coreShape,
		Material: b.material(pc.Core.Material),
		Position: b.vector(pc.Core.Position),
	}
	return gisas.CoreShell{Core: core, Shell: p, Position: pos, Weight: weight}, b.err
}

// distribution builds a polydisperse particle population. Each member
// is built with its own copy of the parameters.
func (b *builder) distribution(pc ParticleConfig) (gisas.IParticle, error) {
	dc := *pc.Distribution
	dist, err := dc.distribution()
	if err != nil {
		return nil, err
	}
	weight := b.abundance(pc)
	member := pc
	member.Distribution = nil
	member.Abundance = Num(1)
	return gisas.ParticleDistribution{
		Build: func(value float64) (gisas.IParticle, error) {
			params := make(govaluate.MapParameters, len(b.params)+1)
			for k, v := range b.params {
				params[k] = v
			}
			params[dc.Name] = value
			mb := &builder{file: b.file, params: params}
			return mb.particle(member)
		},
		Distribution: dist,
		NSamples:     dc.samples(),
		SigmaFactor:  dc.SigmaFactor,
		Weight:       weight,
	}, b.err
}

func (b *builder) shape(pc ParticleConfig) (formfactor.Shape, error) {
	switch strings.ToLower(pc.Shape) {
	case "sphere":
		return formfactor.FullSphere{Radius: b.num(pc.Radius)}, b.err
	case "cylinder":
		return formfactor.Cylinder{Radius: b.num(pc.Radius), Height: b.num(pc.Height)}, b.err
	case "box":
		return formfactor.Box{Length: b.num(pc.Length), Width: b.num(pc.Width), Height: b.num(pc.Height)}, b.err
	case "spheroid":
		return formfactor.FullSpheroid{Radius: b.num(pc.Radius), Height: b.num(pc.Height)}, b.err
	case "gaussiansphere":
		return formfactor.SphereGaussianRadius{Mean: b.num(pc.Radius), Sigma: b.num(pc.Sigma)}, b.err
	case "dot":
		return formfactor.Dot{}, b.err
	default:
		return nil, fmt.Errorf("invalid particle shape %q", pc.Shape)
	}
}
