// Package pkg provides the libraries behind rasterfold, a tool that folds
// vector features into a raster aligned to a model raster.
//
// # Overview
//
// The pkg directory is organized into four areas:
//
//  1. [grid], [fold] - the accumulator: row-major float64 grids and the
//     count, max and mean reducers
//  2. [burn], [raster], [vector] - geometry: the Burner boundary, the raster
//     model and geotransform, and the feature model with a GeoJSON reader
//  3. [gdal] - GDAL-backed sources, raster models, burner and GeoTIFF writer
//  4. [pipeline] - orchestration (open → fold → write)
//
// plus the shared [errors], [observability] and [buildinfo] packages.
//
// # Architecture
//
// The data flow of one run:
//
//	vector source          model raster
//	     ↓                      ↓
//	[vector] features     [raster] Model
//	     ↓                      ↓
//	[burn] Burner: one feature → occupancy grid
//	     ↓
//	[fold] Accumulator: count / max / mean
//	     ↓
//	[gdal] WriteGeoTIFF
//
// # Quick Start
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source: "buildings.shp",
//	    Raster: "dem.tif",
//	    Output: "max_height.tif",
//	    Method: fold.MethodMax,
//	    Field:  "height",
//	})
//
// Reducers can be used without any geospatial backend:
//
//	acc := fold.NewAccumulator(fold.MethodMean, width, height)
//	for _, f := range features {
//	    occ.Zero()
//	    _ = burner.Burn(f.Geometry, occ)
//	    _ = acc.Fold(occ, value(f))
//	}
//	out, _ := acc.Finalize()
package pkg
