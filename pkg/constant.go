package pkg

const (
	INF_WEIGHT float64 = 1e15

	// fixed-point scale of raw node coordinates (decimicro degrees)
	DECIMICRO_SCALE = 10_000_000.0

	EARTH_RADIUS_KM = 6371.0

	DEFAULT_ROUTABLE_KEY = "highway"

	OUTER_ROLE = "outer"
	INNER_ROLE = "inner"

	// number of sample identifiers kept per build-time problem class
	MAX_REPORT_SAMPLES = 10
)

const (
	DEBUG = false
)

// multipolygon-ish relation types exported by the geometry exporter
var GeometryRelationTypes = map[string]struct{}{
	"multipolygon": {},
	"boundary":     {},
}
