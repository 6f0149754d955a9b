package cosmo

// Physical constants and unit conversions. Distances are carried in Mpc,
// expansion rates in km/s/Mpc, masses in solar masses and times in Gyr.
const (
	// SpeedOfLightKmS is c in km/s.
	SpeedOfLightKmS = 299792.458

	// KmSMpcPerInvGyr converts an expansion rate from 1/Gyr to km/s/Mpc.
	KmSMpcPerInvGyr = 977.792

	// SpeedOfLightMpcGyr is c in Mpc/Gyr.
	SpeedOfLightMpcGyr = SpeedOfLightKmS / KmSMpcPerInvGyr

	// SchwarzschildRadiusSunMpc is 2*G*M_sun/c^2 expressed in Mpc.
	SchwarzschildRadiusSunMpc = 9.5706e-20

	// SoundHorizonMpc is the fixed comoving sound horizon r_d used to form
	// BAO and CMB distance ratios.
	SoundHorizonMpc = 147.09

	// RecombinationRedshift is z_star for the compressed CMB distance prior.
	RecombinationRedshift = 1089.8
)
