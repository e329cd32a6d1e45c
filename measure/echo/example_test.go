package echo_test

import (
	"fmt"

	"github.com/cwbudde/algo-tapdelay/measure/echo"
)

func ExampleFindEchoes() {
	// dry impulse with two repeats, each at 60% of the previous one
	resp := make([]float64, 300)
	resp[0], resp[100], resp[200] = 1, 0.6, 0.36

	for _, e := range echo.FindEchoes(resp, 1, 0.01) {
		fmt.Printf("%3d %5.2f %6.2f dB\n", e.Index, e.Level, e.LevelDB)
	}

	decay, _ := echo.RepeatDecay(echo.FindEchoes(resp, 1, 0.01))
	fmt.Printf("decay per repeat: %.2f\n", decay)

	// Output:
	//   0  1.00   0.00 dB
	// 100  0.60  -4.44 dB
	// 200  0.36  -8.87 dB
	// decay per repeat: 0.60
}

func ExampleMagnitudeResponse() {
	mag, err := echo.MagnitudeResponse([]float64{1, 0, 0, 0, 1}, 8)
	if err != nil {
		panic(err)
	}

	for k, v := range mag {
		fmt.Printf("bin %d: %.1f\n", k, v)
	}

	// Output:
	// bin 0: 2.0
	// bin 1: 0.0
	// bin 2: 2.0
	// bin 3: 0.0
	// bin 4: 2.0
}
