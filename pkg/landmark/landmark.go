package landmark

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/osmgraph/pkg"
	"github.com/lintang-b-s/osmgraph/pkg/concurrent"
	da "github.com/lintang-b-s/osmgraph/pkg/datastructure"
	"github.com/lintang-b-s/osmgraph/pkg/util"
	"go.uber.org/zap"
)

const MAX_LANDMARKS = 64

// Landmark stores the road distance from a few landmark vertices to every vertex. Edges
// are undirected, so one table serves both directions.
type Landmark struct {
	lw        [][]float64 // distance from each landmark to every vertex
	landmarks []da.Index
}

func NewLandmark() *Landmark {
	return &Landmark{
		lw:        make([][]float64, 0),
		landmarks: make([]da.Index, 0),
	}
}

func (lm *Landmark) Landmarks() []da.Index {
	return lm.landmarks
}

func (lm *Landmark) NumberOfVertices() int {
	if len(lm.lw) == 0 {
		return 0
	}
	return len(lm.lw[0])
}

/*
planar landmark selection, section 7 of Goldberg & Harrelson, "Computing the shortest path:
A* search meets graph theory" (SODA 2005).

the plane around the bounding box center is split into k directions; for each direction the
vertex furthest along it that is not a landmark yet is picked.
*/
func SelectLandmarks(k int, graph *da.Graph) []da.Index {
	n := graph.NumberOfVertices()
	if k > n {
		k = n
	}
	landmarks := make([]da.Index, 0, k)
	if k == 0 {
		return landmarks
	}

	minLat, minLon := graph.BoundingBox().GetMinCoord()
	maxLat, maxLon := graph.BoundingBox().GetMaxCoord()
	centerLat := (minLat + maxLat) / 2.0
	centerLon := (minLon + maxLon) / 2.0

	chosen := make(map[da.Index]struct{}, k)
	thetaDif := 360.0 / float64(k)
	theta := 0.0
	for i := 0; i < k; i++ {
		thetaRad := util.DegreeToRadians(theta)
		sint := math.Sin(thetaRad)
		cost := math.Cos(thetaRad)

		cand := da.INVALID_VERTEX_ID
		best := -math.MaxFloat64
		graph.ForVertices(func(u da.Index, v *da.Vertex) {
			if _, ok := chosen[u]; ok {
				return
			}
			proj := (v.GetLon()-centerLon)*cost + (v.GetLat()-centerLat)*sint
			if proj > best {
				best = proj
				cand = u
			}
		})

		chosen[cand] = struct{}{}
		landmarks = append(landmarks, cand)
		theta += thetaDif
	}
	return landmarks
}

/*
preprocessing phase of A*, landmarks and triangle inequality (ALT): one full Dijkstra per
landmark, O(k * (n+m) log n).
*/
func (lm *Landmark) Preprocess(ctx context.Context, k, workers int, graph *da.Graph, logger *zap.Logger) error {
	if k > MAX_LANDMARKS {
		return util.WrapErrorf(nil, util.ErrBadParamInput,
			"too many landmarks, the maximum number of landmarks is %d", MAX_LANDMARKS)
	}
	if workers < 1 {
		workers = 1
	}
	logger.Info("computing landmarks....", zap.Int("landmarks", k))

	landmarks := SelectLandmarks(k, graph)
	lw := concurrent.Map(ctx, workers, landmarks, func(ctx context.Context, s da.Index) []float64 {
		if ctx.Err() != nil {
			return nil
		}
		return NewDijkstra(graph).ShortestPath(s)
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	lm.landmarks = landmarks
	lm.lw = lw
	logger.Info("done computing landmarks....")
	return nil
}

/*
tightest lower bound on dist(u, t) from the triangle inequality, section 6 of Goldberg &
Harrelson: for every landmark L, |d(L,t) - d(L,u)| <= d(u,t).
*/
func (lm *Landmark) LowerBound(u, t da.Index) float64 {
	// O(k), k = number of landmarks
	tighestLowerBound := 0.0
	for i := 0; i < len(lm.landmarks); i++ {
		du, dt := lm.lw[i][u], lm.lw[i][t]
		if du >= pkg.INF_WEIGHT || dt >= pkg.INF_WEIGHT {
			continue
		}
		tighestLowerBound = math.Max(tighestLowerBound, math.Abs(dt-du))
	}
	return tighestLowerBound
}

func (lm *Landmark) WriteLandmark(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(bz)
	fmt.Fprintf(w, "%d %d\n", len(lm.landmarks), lm.NumberOfVertices())

	for i, landmarkvID := range lm.landmarks {
		fmt.Fprintf(w, "%d", landmarkvID)
		for _, sp := range lm.lw[i] {
			fmt.Fprintf(w, " %s", strconv.FormatFloat(sp, 'f', -1, 64))
		}
		fmt.Fprintf(w, "\n")
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return bz.Close()
}

func ReadLandmark(filename string) (*Landmark, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, err
	}
	defer bz.Close()
	br := bufio.NewReader(bz)

	ff, err := readFields(br)
	if err != nil {
		return nil, err
	}
	if len(ff) != 2 {
		return nil, fmt.Errorf("landmark header: want 2 fields, got %d", len(ff))
	}
	k, err := strconv.Atoi(ff[0])
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(ff[1])
	if err != nil {
		return nil, err
	}

	lm := NewLandmark()
	lm.landmarks = make([]da.Index, k)
	lm.lw = make([][]float64, k)
	for i := 0; i < k; i++ {
		ff, err := readFields(br)
		if err != nil {
			return nil, err
		}
		if len(ff) != n+1 {
			return nil, fmt.Errorf("landmark %d: want %d fields, got %d", i, n+1, len(ff))
		}

		id, err := strconv.ParseUint(ff[0], 10, 32)
		if err != nil {
			return nil, err
		}
		lm.landmarks[i] = da.Index(id)

		lm.lw[i] = make([]float64, n)
		for v := 0; v < n; v++ {
			sp, err := strconv.ParseFloat(ff[v+1], 64)
			if err != nil {
				return nil, err
			}
			lm.lw[i][v] = sp
		}
	}
	return lm, nil
}

func readFields(br *bufio.Reader) ([]string, error) {
	line, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, err
	}
	return strings.Fields(line), nil
}
