package probe

// Built-in sample datasets, used when no observation file is supplied.
// Supernova moduli follow a Pantheon-like Hubble diagram, BAO entries mimic
// the usual low-redshift D_V/r_d compilation and the CMB entry is a single
// compressed 100*theta_star distance prior.

var sampleSupernovae = Series{
	{Z: 0.010, Value: 33.26, Sigma: 0.15, Syst: 0.05},
	{Z: 0.025, Value: 35.28, Sigma: 0.14, Syst: 0.05},
	{Z: 0.050, Value: 36.82, Sigma: 0.13, Syst: 0.05},
	{Z: 0.075, Value: 37.73, Sigma: 0.13, Syst: 0.05},
	{Z: 0.100, Value: 38.38, Sigma: 0.12, Syst: 0.05},
	{Z: 0.150, Value: 39.31, Sigma: 0.12, Syst: 0.05},
	{Z: 0.200, Value: 39.98, Sigma: 0.12, Syst: 0.05},
	{Z: 0.250, Value: 40.51, Sigma: 0.12, Syst: 0.05},
	{Z: 0.300, Value: 40.95, Sigma: 0.12, Syst: 0.05},
	{Z: 0.350, Value: 41.32, Sigma: 0.13, Syst: 0.05},
	{Z: 0.400, Value: 41.65, Sigma: 0.13, Syst: 0.05},
	{Z: 0.450, Value: 41.94, Sigma: 0.13, Syst: 0.05},
	{Z: 0.500, Value: 42.20, Sigma: 0.14, Syst: 0.05},
	{Z: 0.600, Value: 42.65, Sigma: 0.14, Syst: 0.06},
	{Z: 0.700, Value: 43.03, Sigma: 0.15, Syst: 0.06},
	{Z: 0.800, Value: 43.36, Sigma: 0.16, Syst: 0.06},
	{Z: 0.900, Value: 43.64, Sigma: 0.17, Syst: 0.07},
	{Z: 1.000, Value: 43.90, Sigma: 0.18, Syst: 0.07},
	{Z: 1.200, Value: 44.33, Sigma: 0.21, Syst: 0.08},
	{Z: 1.400, Value: 44.70, Sigma: 0.24, Syst: 0.09},
	{Z: 1.600, Value: 45.01, Sigma: 0.28, Syst: 0.10},
	{Z: 1.800, Value: 45.28, Sigma: 0.33, Syst: 0.11},
	{Z: 2.000, Value: 45.52, Sigma: 0.38, Syst: 0.12},
}

var sampleBAO = Series{
	{Z: 0.106, Value: 2.98, Sigma: 0.13},
	{Z: 0.150, Value: 4.47, Sigma: 0.17},
	{Z: 0.320, Value: 8.47, Sigma: 0.17},
	{Z: 0.380, Value: 10.23, Sigma: 0.17},
	{Z: 0.510, Value: 13.36, Sigma: 0.21},
	{Z: 0.610, Value: 15.45, Sigma: 0.22},
	{Z: 0.730, Value: 17.86, Sigma: 0.33},
	{Z: 1.480, Value: 30.69, Sigma: 0.80},
}

var sampleCMB = Series{
	{Z: 1089.8, Value: 1.04109, Sigma: 0.00030},
}

// SampleTable returns the built-in observation table. Each call returns an
// independent copy, so callers can never alias the constants above.
func SampleTable() Table {
	t, err := NewTable(map[Kind]Series{
		Supernova: sampleSupernovae,
		BAO:       sampleBAO,
		CMB:       sampleCMB,
	})
	if err != nil {
		// The constants above are validated by construction.
		panic(err)
	}
	return t
}
