// Normalizer turns a keyed snapshot of raw readings into the ordered
// series every analysis step works on.
package normalizer

import (
	"sort"

	"github.com/NotCoffee418/ignyte_sensor/pkg/pushid"
	"github.com/NotCoffee418/ignyte_sensor/pkg/types"
	log "github.com/sirupsen/logrus"
)

// Normalize decodes every key of raw, drops entries whose key cannot be
// decoded and returns the rest sorted by timestamp.
// Keys are visited in lexical order so equal timestamps keep a stable order.
func Normalize(raw types.RawSnapshot) types.OrderedSeries {
	series, _ := NormalizeWithSkipped(raw)
	return series
}

// NormalizeWithSkipped is Normalize that also reports the dropped ids.
func NormalizeWithSkipped(raw types.RawSnapshot) (types.OrderedSeries, []string) {
	if len(raw) == 0 {
		return types.OrderedSeries{}, nil
	}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	series := make(types.OrderedSeries, 0, len(ids))
	var skipped []string
	for _, id := range ids {
		ts, err := pushid.Decode(id)
		if err != nil {
			log.WithFields(log.Fields{"id": id}).Warnf("Skipping reading: %v", err)
			skipped = append(skipped, id)
			continue
		}
		series = append(series, types.DecodedReading{
			ID:         id,
			Timestamp:  ts,
			RawReading: raw[id],
		})
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	})
	return series, skipped
}
