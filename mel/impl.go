package mel

import "image"
import "image/png"
import "io"
import "os"
import "path/filepath"
import "strings"
import "image/color"
import "github.com/faiface/beep"
import "github.com/faiface/beep/wav"
import "github.com/mewkiz/flac"
import "github.com/x448/float16"
import "math"

func dumpimage(name string, buf [][]float64, reverse bool) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}

	stride := len(buf)
	mels := len(buf[0])

	img := image.NewRGBA(image.Rect(0, 0, stride, mels))

	var mgc_max, mgc_min = math.Inf(-1), math.Inf(1)

	for x := 0; x < stride; x++ {
		for y := 0; y < mels; y++ {
			var w = buf[x][y]
			if w > mgc_max {
				mgc_max = w
			}
			if w < mgc_min {
				mgc_min = w
			}
		}
	}
	var span = mgc_max - mgc_min
	if span == 0 {
		span = 1
	}
	for x := 0; x < stride; x++ {
		for y := 0; y < mels; y++ {
			var col color.RGBA
			val := (buf[x][y] - mgc_min) / span
			col.R = uint8(int(255 * val))
			col.G = uint8(int(255 * val * val))
			col.B = uint8(int(255 * (1 - val) * 0.5))
			col.A = uint8(255)
			if reverse {
				img.SetRGBA(x, mels-y-1, col)
			} else {
				img.SetRGBA(x, y, col)
			}
		}
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return nil
}

func dumpbuffer(buf [][]float64) (out []uint16) {
	for i := range buf {
		for _, v := range buf[i] {
			out = append(out, float16.Fromfloat32(float32(v)).Bits())
		}
	}
	return
}

func isFlac(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".flac")
}

func loadwav(name string) (out []float64, sr int, err error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	// wavReader
	stream, format, err := wav.Decode(file)
	if err != nil {
		return nil, 0, err
	}
	defer stream.Close()

	var gain = wavGain(format.Precision)
	var samples = make([][2]float64, 512)
	for {
		n, ok := stream.Stream(samples)
		if !ok {
			break
		}
		for i := 0; i < n; i++ {
			out = append(out, (samples[i][0]+samples[i][1])*0.5*gain)
		}
	}
	if err := stream.Err(); err != nil {
		return nil, 0, err
	}

	return out, int(format.SampleRate), nil
}

// wavGain undoes the beep decoder scaling, which divides 16 and 24-bit
// samples by the full unsigned range and so loads them at half amplitude.
func wavGain(precision int) float64 {
	switch precision {
	case 2:
		return float64(1<<16-1) / float64(1<<15)
	case 3:
		return float64(1<<24-1) / float64(1<<23)
	}
	return 1
}

func loadflac(name string) (out []float64, sr int, err error) {
	stream, err := flac.ParseFile(name)
	if err != nil {
		return nil, 0, err
	}
	defer stream.Close()

	var scale = float64(int64(1) << (stream.Info.BitsPerSample - 1))

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		if len(frame.Subframes) == 0 {
			continue
		}
		var channels = float64(len(frame.Subframes))
		for i := range frame.Subframes[0].Samples {
			var sum float64
			for _, sub := range frame.Subframes {
				sum += float64(sub.Samples[i])
			}
			out = append(out, sum/channels/scale)
		}
	}

	return out, int(stream.Info.SampleRate), nil
}

func dumpwav(name string, vec []float64, sr int) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}

	var pos = 0
	streamer := beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= len(vec) {
			return 0, false
		}
		for n = 0; n < len(samples) && pos < len(vec); n++ {
			samples[n][0] = vec[pos]
			samples[n][1] = vec[pos]
			pos++
		}
		return n, true
	})

	format := beep.Format{
		SampleRate:  beep.SampleRate(sr),
		NumChannels: 1,
		Precision:   2,
	}

	if err := wav.Encode(f, streamer, format); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// domel projects a power spectrogram onto the filter bank, flooring each
// mel bin at floor.
func domel(spectrum [][]float64, filters FilterBank, floor float64) (melspectrum [][]float64) {
	mels := filters.NumMels()
	melspectrum = make([][]float64, len(spectrum))

	for i := range spectrum {
		row := make([]float64, mels)
		for k, power := range spectrum[i] {
			if power == 0 {
				continue
			}
			weights := filters[k]
			for j := 0; j < mels; j++ {
				row[j] += power * weights[j]
			}
		}
		for j := range row {
			if row[j] < floor {
				row[j] = floor
			}
		}
		melspectrum[i] = row
	}

	return
}

// spectral_normalize converts mel power to decibels in place, clamping to
// topDB below the peak when topDB is positive.
func spectral_normalize(buf [][]float64, topDB float64) {
	var peak = math.Inf(-1)
	for i := range buf {
		for j := range buf[i] {
			buf[i][j] = 10 * math.Log10(buf[i][j])
			if buf[i][j] > peak {
				peak = buf[i][j]
			}
		}
	}
	if topDB <= 0 {
		return
	}
	var lowest = peak - topDB
	for i := range buf {
		for j := range buf[i] {
			if buf[i][j] < lowest {
				buf[i][j] = lowest
			}
		}
	}
}

// reflectPad mirrors p samples onto each end of buf without repeating the
// edge sample, like numpy.pad(mode="reflect").
func reflectPad(buf []float64, p int) []float64 {
	n := len(buf)
	out := make([]float64, n+2*p)
	for i := range out {
		out[i] = buf[reflectIndex(i-p, n)]
	}
	return out
}

func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}
