// Package discovery finds and advertises painters with mDNS.
//
// Painters (and the wave-sim simulator) register the "_wavepainter._tcp"
// service in "local." with two TXT records: path (the params resource,
// normally "/api") and id (a per-process UUID). Scanner browses for that
// service and turns each answer into a Device whose ParamsURL can be
// handed to device.NewClientWithURL.
//
//	devices, err := discovery.Scan(ctx, 3*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range devices {
//	    fmt.Println(d, d.ParamsURL())
//	}
//
// Multicast must be allowed on the interface (UDP port 5353).
package discovery
