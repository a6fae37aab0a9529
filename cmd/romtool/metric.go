package main

import (
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/wdromtool/romtool/pkg/driver"
)

type metricCollector struct {
	m []prometheus.Metric
}

func (mc *metricCollector) Collect(c chan<- prometheus.Metric) {
	for _, m := range mc.m {
		c <- m
	}
}

func (mc *metricCollector) Describe(c chan<- *prometheus.Desc) {}

func outputMetrics(results []driver.ScanResult) {
	var (
		mDriveInfo = prometheus.NewDesc(
			"romtool_drive_info",
			"Info metric regarding a scanned SCSI-disk candidate",
			[]string{"device", "model", "firmware", "serial"}, nil,
		)
		mDriveSupported = prometheus.NewDesc(
			"romtool_drive_supported",
			"Boolean describing whether the drive matched the WD ROM-access signature",
			[]string{"device"}, nil,
		)
	)

	mc := &metricCollector{}
	for _, r := range results {
		if r.Err != nil {
			mc.m = append(mc.m, prometheus.MustNewConstMetric(mDriveSupported, prometheus.GaugeValue, 0, r.Path))
			continue
		}

		mc.m = append(mc.m, prometheus.MustNewConstMetric(mDriveInfo, prometheus.GaugeValue, 1,
			r.Path, r.Identity.Model, r.Identity.FirmwareRevision, r.Identity.SerialNumber))

		sup := float64(0)
		if r.Identity.Supported {
			sup = 1
		}
		mc.m = append(mc.m, prometheus.MustNewConstMetric(mDriveSupported, prometheus.GaugeValue, sup, r.Path))
	}

	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(mc)

	mfs, err := reg.Gather()
	if err != nil {
		log.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
			log.Fatalf("failed to serialize metrics: %v", err)
		}
	}
}
