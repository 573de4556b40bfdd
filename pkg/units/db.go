/*
Package units provides the decibel and power-unit conversions used
throughout the envelope synthesis chain.

Conventions:
  - Power ratios use 10*log10, amplitude ratios use 20*log10.
  - Instantaneous power on IQ buffers is Re^2 + Im^2, i.e. watts over a
    1 ohm reference. dBm values are converted against that same 1 ohm
    reference, so dBm -> dBW(1 ohm) subtracts 10, not the familiar 30.
*/
package units

import "math"

// DBToPowerRatio converts a decibel value to a linear power ratio.
func DBToPowerRatio(db float64) float64 {
	return math.Pow(10, db/10)
}

// PowerRatioToDB converts a linear power ratio to decibels.
func PowerRatioToDB(ratio float64) float64 {
	return 10 * math.Log10(ratio)
}

// DBToAmplitudeRatio converts a decibel value to a linear amplitude ratio.
func DBToAmplitudeRatio(db float64) float64 {
	return math.Pow(10, db/20)
}

// DBmToWatts converts a dBm value to watts over the 1 ohm reference.
func DBmToWatts(dbm float64) float64 {
	return math.Pow(10, (dbm-10)/10)
}

// WattsToDBm converts watts over the 1 ohm reference to dBm.
func WattsToDBm(watts float64) float64 {
	return 10*math.Log10(watts) + 10
}
