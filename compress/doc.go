// Package compress wraps statistical data files in a streaming compressor.
//
// Statistical formats have no compression of their own (sas7bdat's row
// compression aside), so large exports are usually shipped compressed. The
// compression is chosen from a trailing suffix on the output path:
//
//	survey.dta       format.CompressionNone
//	survey.dta.zst   format.CompressionZstd  (klauspost/compress, or gozstd with -tags gozstd)
//	survey.dta.sz    format.CompressionS2    (klauspost/compress/s2)
//	survey.dta.lz4   format.CompressionLZ4   (pierrec/lz4 frame format)
//	survey.dta.gz    format.CompressionGzip  (klauspost/compress/gzip)
//
// FromSuffix splits a path into the compression type and the remaining path,
// whose own suffix then selects the file format.
//
// # Writing
//
//	w, err := compress.NewWriter(format.CompressionZstd, file)
//	if err != nil {
//	    return err
//	}
//	// encode into w ...
//	if err := w.Close(); err != nil { // flushes the frame; file stays open
//	    return err
//	}
//	log.Info("written", zap.Float64("ratio", w.Stats().CompressionRatio()))
//
// # Reading
//
//	r, err := compress.NewReader(format.CompressionZstd, file)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
// Closing a Writer or a reader never closes the underlying stream.
package compress
